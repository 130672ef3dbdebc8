package main

import (
	"flag"
	"fmt"
	"os"

	"provelope/internal/infra/cid"
	cryptoinfra "provelope/internal/infra/crypto"
)

func runCID(args []string) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	fs.StringVar(&inPath, "in", "", "content file path")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "cid requires --in")
		return 1
	}

	content, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read content: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, []byte(cid.ComputeContentID(content))); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

func runCanon(args []string) int {
	fs := flag.NewFlagSet("canon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	fs.StringVar(&inPath, "in", "", "JSON file path")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "canon requires --in")
		return 1
	}

	input, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		return 1
	}
	canonical, err := cryptoinfra.CanonicalizeJSON(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "canonicalize: %v\n", err)
		return 1
	}
	if outPath == "" {
		// Canonical bytes already end in a newline; avoid doubling it.
		if _, err := os.Stdout.Write(canonical); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(outPath, canonical, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
