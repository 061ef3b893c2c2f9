// Package yaml provides YAML-based configuration parsing and loading.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

// yamlConfig represents the raw YAML structure.
// Pointer fields tell an absent key apart from an explicit zero value.
type yamlConfig struct {
	KeyringDir  *string `yaml:"keyring_dir"`
	GnupgHome   *string `yaml:"gnupg_home"`
	Engine      *string `yaml:"engine"`
	GPGBinary   *string `yaml:"gpg_binary"`
	RegistryURL *string `yaml:"registry_url"`
	DownloadDir *string `yaml:"download_dir"`
	HTTPTimeout *string `yaml:"http_timeout"`
	UserAgent   *string `yaml:"user_agent"`
	BlockSize   *int    `yaml:"block_size"`
	LogLevel    *string `yaml:"log_level"`
	NoColor     *bool   `yaml:"no_color"`
	TempDir     *string `yaml:"temp_dir"`
}

// ConfigParser parses YAML configuration files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile parses a YAML config file over base
func (p *ConfigParser) ParseFile(filePath string, base entities.Config) (entities.Config, error) {
	//nolint:gosec // G304: filePath is the user's config file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return base, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	cfg, err := p.Parse(data, base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", filePath, err)
	}
	return cfg, nil
}

// Parse parses YAML bytes and overlays the keys present onto base.
// Unknown keys are rejected so typos do not pass silently.
func (p *ConfigParser) Parse(data []byte, base entities.Config) (entities.Config, error) {
	var raw yamlConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty file decodes to io.EOF and leaves base untouched
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := base
	setString(&cfg.KeyringDir, raw.KeyringDir)
	setString(&cfg.GnupgHome, raw.GnupgHome)
	setString(&cfg.Engine, raw.Engine)
	setString(&cfg.GPGBinary, raw.GPGBinary)
	setString(&cfg.RegistryURL, raw.RegistryURL)
	setString(&cfg.DownloadDir, raw.DownloadDir)
	setString(&cfg.UserAgent, raw.UserAgent)
	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.TempDir, raw.TempDir)

	if raw.HTTPTimeout != nil {
		d, err := time.ParseDuration(*raw.HTTPTimeout)
		if err != nil {
			return base, fmt.Errorf("invalid http_timeout %q: %w", *raw.HTTPTimeout, err)
		}
		cfg.HTTPTimeout = d
	}
	if raw.BlockSize != nil {
		cfg.BlockSize = *raw.BlockSize
	}
	if raw.NoColor != nil {
		cfg.NoColor = *raw.NoColor
	}

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
