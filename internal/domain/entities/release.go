package entities

// DefaultGemPlatform is the platform of gems built without native extensions
const DefaultGemPlatform = "ruby"

// RegistryRelease is one published version of a package as reported by a registry
type RegistryRelease struct {
	Number   string // Version identifier, e.g. "2.0.0"
	Platform string // Gem platform, "ruby" when empty
	SHA256   string // Published hex digest
}

// EffectivePlatform returns the release platform with the registry default applied
func (r RegistryRelease) EffectivePlatform() string {
	if r.Platform == "" {
		return DefaultGemPlatform
	}
	return r.Platform
}

// PackageCoordinates are the logical name, version and platform parsed from a file name
type PackageCoordinates struct {
	Name     string
	Version  string
	Platform string
}
