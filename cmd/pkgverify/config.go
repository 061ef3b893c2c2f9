package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ochairo/pkgverify/internal/domain/entities"
	"github.com/ochairo/pkgverify/internal/domain/interfaces"
	"github.com/ochairo/pkgverify/internal/external-adapters/yaml"
)

// commonFlags are the settings every command can override on the command line
type commonFlags struct {
	configPath string
	engine     string
	keyringDir string
	logLevel   string
	noColor    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Config file (default $"+yaml.ConfigEnv+" or ./"+yaml.DefaultConfigFile+")")
	fs.StringVar(&c.engine, "engine", "", "Signature engine: auto, native or gpg")
	fs.StringVar(&c.keyringDir, "keyring", "", "Directory of trusted <KEYID>.pkey files")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error or silent")
	fs.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
}

// loadConfig reads the config file and applies the flags that were set explicitly
func (c *commonFlags) loadConfig(fs *flag.FlagSet) (entities.Config, error) {
	cfg, err := yaml.NewConfigRepository().Load(c.configPath)
	if err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "engine":
			cfg.Engine = c.engine
		case "keyring":
			cfg.KeyringDir = c.keyringDir
		case "log-level":
			cfg.LogLevel = c.logLevel
		case "no-color":
			cfg.NoColor = c.noColor
		}
	})

	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg entities.Config, stderr io.Writer) interfaces.Logger {
	return interfaces.NewSlogLogger(stderr, cfg.LogLevel)
}

// parseArgs parses flags that may appear before or after positional arguments
// and returns the positional arguments in order
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
