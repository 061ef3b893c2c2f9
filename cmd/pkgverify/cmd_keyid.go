package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ochairo/pkgverify/internal/domain-adapters/gateways"
)

func runKeyID(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("keyid", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pkgverify keyid <signature> [options]

Print the issuer key id of a detached OpenPGP signature, upper-cased as used
for <KEYID>.pkey file names in the keyring directory.

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
	if len(positional) != 1 {
		fmt.Fprintf(stderr, "Error: signature path is required\n\n")
		fs.Usage()
		return exitUsage
	}

	cfg, err := common.loadConfig(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	engines, err := gateways.SelectEngine(cfg, gateways.EngineOptions{}, newLogger(cfg, stderr))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	keyID, err := engines.KeyIDs.ExtractKeyID(ctx, positional[0])
	if err != nil {
		fmt.Fprintf(stderr, "Error: unparseable signature: %v\n", err)
		return exitIndeterminate
	}

	fmt.Fprintln(stdout, keyID)
	return exitVerified
}
