package yaml

import (
	"fmt"
	"os"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

// ConfigEnv names the environment variable holding the config file path
const ConfigEnv = "PKGVERIFY_CONFIG"

// DefaultConfigFile is read from the working directory when present
const DefaultConfigFile = "pkgverify.yml"

// ConfigRepository locates and loads the configuration file
type ConfigRepository struct {
	parser *ConfigParser
	getenv func(string) string
}

// NewConfigRepository creates a new YAML-based config repository
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{
		parser: NewConfigParser(),
		getenv: os.Getenv,
	}
}

// Load returns the defaults overlaid with the first config file found.
//
// An explicit path must exist. Otherwise $PKGVERIFY_CONFIG is used, and then
// ./pkgverify.yml if it exists. Without any file the defaults are returned.
func (r *ConfigRepository) Load(path string) (entities.Config, error) {
	base := entities.DefaultConfig()

	if path == "" {
		path = r.getenv(ConfigEnv)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return base, fmt.Errorf("config not found: %s", path)
		}
		return r.parser.ParseFile(path, base)
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return r.parser.ParseFile(DefaultConfigFile, base)
	}
	return base, nil
}
