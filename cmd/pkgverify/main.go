package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Process exit codes
const (
	exitVerified      = 0
	exitFailed        = 1
	exitIndeterminate = 2
	exitUsage         = 64
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	command := args[0]

	// Dispatch to subcommand
	switch command {
	case "verify":
		return runVerify(ctx, args[1:], stdout, stderr)
	case "keyid":
		return runKeyID(ctx, args[1:], stdout, stderr)
	case "digest":
		return runDigest(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitVerified
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `pkgverify - Verify downloaded packages against signatures and registry digests

Usage:
  pkgverify <command> [options]

Commands:
  verify   Verify a package (.tar.gz by OpenPGP signature, .gem by RubyGems digest)
  keyid    Print the issuer key id of a detached signature
  digest   Print the SHA-256 digest of a file

Exit status:
  0 verified, 1 verification failed, 2 could not verify, 64 usage or config error

Use "pkgverify <command> --help" for more information about a command.`)
}
