package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ochairo/pkgverify/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/pkgverify/internal/domain-orchestrators"
	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/services"
)

func runVerify(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	var (
		tarPath     = fs.String("tar", "", "Package file on disk")
		sigPath     = fs.String("sig", "", "Detached signature file (default <package>.asc)")
		sigURL      = fs.String("sig-url", "", "Signature URL (default <url>.asc)")
		pubkey      = fs.String("pubkey", "", "Public key file; skips the keyring lookup")
		gnupgHome   = fs.String("gnupghome", "", "Keyring home for the engine; never deleted")
		pkgURL      = fs.String("url", "", "Package URL; the package is read from --download-dir")
		downloadDir = fs.String("download-dir", "", "Directory holding packages referenced by --url")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pkgverify verify [<file> | --tar <file> | --url <url>] [options]

Verify a package file.

  *.tar.gz  detached OpenPGP signature (<file>.asc, fetched from <url>.asc when missing)
            signed by a key present in the keyring directory
  *.gem     SHA-256 digest published by the RubyGems API for the exact version

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  pkgverify verify foo-1.2.3.tar.gz --keyring ./keyring
  pkgverify verify --tar foo-1.2.3.tar.gz --sig foo.asc --pubkey release.pkey
  pkgverify verify --url https://example.org/foo-1.2.3.tar.gz --download-dir /tmp/pkgs
  pkgverify verify bar-2.0.0.gem
`)
	}

	positional, err := parseArgs(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitVerified
		}
		return exitUsage
	}

	cfg, err := common.loadConfig(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if *gnupgHome != "" {
		cfg.GnupgHome = *gnupgHome
	}
	if *downloadDir != "" {
		cfg.DownloadDir = *downloadDir
	}

	if *tarPath == "" && len(positional) > 0 {
		*tarPath = positional[0]
	}
	if (*tarPath == "") == (*pkgURL == "") {
		fmt.Fprintf(stderr, "Error: exactly one of <file>, --tar or --url is required\n\n")
		fs.Usage()
		return exitUsage
	}

	var ref entities.PackageRef
	if *pkgURL != "" {
		ref = entities.PackageRefFromURL(*pkgURL, cfg.DownloadDir)
	} else {
		ref = entities.NewPackageRef(*tarPath)
	}
	ref.SignaturePath = *sigPath
	ref.SignatureURL = *sigURL
	ref.PublicKeyPath = *pubkey
	ref.GnupgHome = cfg.GnupgHome

	logger := newLogger(cfg, stderr)

	composite, err := gateways.NewCompositeGateway(cfg, gateways.EngineOptions{}, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	service := services.NewVerificationService(services.Dependencies{
		Fetcher:  composite.Fetcher,
		Digester: composite.Digester,
		KeyIDs:   composite.Engines.KeyIDs,
		Keyring:  composite.Keyring,
		Engine:   composite.Engines.Engine,
		Registry: composite.Registry,
		Logger:   logger,
	})
	reporter := gateways.NewConsoleReporter(stdout, !cfg.NoColor)

	result := orchestrators.NewVerificationOrchestrator(service, reporter, logger).Run(ctx, ref)
	return result.Outcome.ExitCode()
}
