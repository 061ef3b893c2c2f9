package entities

import (
	"fmt"
	"strings"
	"time"
)

// Signature engine selections
const (
	EngineAuto   = "auto"
	EngineNative = "native"
	EngineGPG    = "gpg"
)

// DefaultRegistryURL is the RubyGems versions endpoint; {name} is replaced by the gem name
const DefaultRegistryURL = "https://rubygems.org/api/v1/versions/{name}.json"

// DefaultBlockSize is the read block size used when hashing files
const DefaultBlockSize = 4096

// Config holds the verifier settings
type Config struct {
	KeyringDir  string        // Directory of <KEYID>.pkey files
	GnupgHome   string        // Keyring home handed to the engine, never deleted
	Engine      string        // auto, native or gpg
	GPGBinary   string        // Name or path of the gpg executable
	RegistryURL string        // Versions endpoint template
	DownloadDir string        // Where URL-referenced packages live
	HTTPTimeout time.Duration // Per request timeout
	UserAgent   string
	BlockSize   int    // Hash read block size
	LogLevel    string // debug, info, warn, error, silent
	NoColor     bool
	TempDir     string // Parent of scoped keyrings, os.TempDir() when empty
}

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	return Config{
		KeyringDir:  "keyring",
		Engine:      EngineAuto,
		GPGBinary:   "gpg",
		RegistryURL: DefaultRegistryURL,
		DownloadDir: ".",
		HTTPTimeout: 30 * time.Second,
		UserAgent:   "pkgverify/1.0",
		BlockSize:   DefaultBlockSize,
		LogLevel:    "warn",
	}
}

// Validate checks the settings for values no component can work with
func (c Config) Validate() error {
	switch c.Engine {
	case EngineAuto, EngineNative, EngineGPG:
	default:
		return fmt.Errorf("unknown engine %q (want auto, native or gpg)", c.Engine)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block_size must be positive, got %d", c.BlockSize)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if !strings.Contains(c.RegistryURL, "{name}") {
		return fmt.Errorf("registry_url must contain {name}: %s", c.RegistryURL)
	}
	if c.Engine == EngineGPG && c.GPGBinary == "" {
		return fmt.Errorf("gpg_binary is required when engine is gpg")
	}
	return nil
}
