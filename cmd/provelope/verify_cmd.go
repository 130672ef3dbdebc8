package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"provelope/internal/domain"
	"provelope/internal/infra/keyset"
	"provelope/internal/usecase"
)

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var keySetPath string
	var keySetURL string
	var expectedCID string
	var timeoutSecs int

	fs.StringVar(&inPath, "in", "", "envelope JSON path")
	fs.StringVar(&keySetPath, "keyset", "", "explicit key set JSON path")
	fs.StringVar(&keySetURL, "keyset-url", "", "fallback key set URL")
	fs.StringVar(&expectedCID, "expected-cid", "", "expected content identifier")
	fs.IntVar(&timeoutSecs, "timeout", 10, "overall timeout in seconds")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "verify requires --in")
		return 1
	}

	envelopeBytes, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read envelope: %v\n", err)
		return 1
	}
	var envelope domain.ProofEnvelope
	if err := json.Unmarshal(envelopeBytes, &envelope); err != nil {
		fmt.Fprintf(os.Stderr, "decode envelope: %v\n", err)
		return 1
	}

	var explicit *domain.KeySet
	if keySetPath != "" {
		payload, err := os.ReadFile(keySetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read key set: %v\n", err)
			return 1
		}
		var ks domain.KeySet
		if err := json.Unmarshal(payload, &ks); err != nil {
			fmt.Fprintf(os.Stderr, "decode key set: %v\n", err)
			return 1
		}
		explicit = &ks
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	verification := usecase.VerifyEnvelope(ctx, envelope, usecase.VerifyOptions{
		ExpectedContentID: expectedCID,
		KeySet:            explicit,
		Fetcher:           keyset.NewHTTPFetcher(nil),
		DefaultKeySetURL:  keySetURL,
	})

	payload, err := json.MarshalIndent(verification, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		return 1
	}
	if err := writeOutput("", payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	if !verification.OK {
		return 1
	}
	return 0
}
