package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ochairo/pkgverify/internal/domain-adapters/gateways"
)

func runDigest(_ context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pkgverify digest <file>... [options]

Print the SHA-256 digest of each file, in sha256sum format.

Options:
`)
		fs.PrintDefaults()
	}

	positional, err := parseArgs(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitVerified
		}
		return exitUsage
	}
	if len(positional) == 0 {
		fmt.Fprintf(stderr, "Error: file path is required\n\n")
		fs.Usage()
		return exitUsage
	}

	cfg, err := common.loadConfig(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	digester := gateways.NewChecksumVerifier(cfg.BlockSize)
	code := exitVerified
	for _, path := range positional {
		sum, err := digester.FileSHA256(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			code = exitIndeterminate
			continue
		}
		fmt.Fprintf(stdout, "%s  %s\n", sum, path)
	}
	return code
}
