package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "cid":
		return runCID(args[2:])
	case "canon":
		return runCanon(args[2:])
	case "verify":
		return runVerify(args[2:])
	case "keyset":
		if len(args) >= 3 && args[2] == "fetch" {
			return runKeySetFetch(args[3:])
		}
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "provelope"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s cid --in <file> [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s canon --in <file.json> [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s verify --in <envelope.json> [--keyset <jwks.json>] [--keyset-url <url>] [--expected-cid <cid>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s keyset fetch --url <url> [--out <file>]\n", name)
}
