package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"provelope/internal/infra/keyset"
)

func runKeySetFetch(args []string) int {
	fs := flag.NewFlagSet("keyset fetch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var url string
	var outPath string
	var timeoutSecs int
	fs.StringVar(&url, "url", "", "key set URL")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")
	fs.IntVar(&timeoutSecs, "timeout", 10, "fetch timeout in seconds")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if url == "" {
		fmt.Fprintln(os.Stderr, "keyset fetch requires --url")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	ks, err := keyset.NewHTTPFetcher(nil).FetchKeySet(ctx, url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch key set: %v\n", err)
		return 1
	}
	payload, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode key set: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
