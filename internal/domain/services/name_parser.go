package services

import (
	"fmt"
	"strings"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

// NameParser derives a package's registry coordinates from its file name
type NameParser interface {
	Parse(filename string) (entities.PackageCoordinates, error)
}

// GemFilenameParser parses RubyGems file names of the form
// <name>-<version>[-<platform>].gem.
//
// The file name is split on '-'. The version is the first segment after the
// name that starts with a digit run followed by '.', so names holding digits
// next to hyphens ("ruby-2fa", "net-http2") stay intact. A bare integer is a
// version only as the last segment ("foo-10.gem"). Segments after the version
// form the platform; without them the platform is "ruby".
type GemFilenameParser struct{}

// Parse implements NameParser
func (GemFilenameParser) Parse(filename string) (entities.PackageCoordinates, error) {
	base, ok := strings.CutSuffix(filename, ".gem")
	if !ok || base == "" {
		return entities.PackageCoordinates{}, fmt.Errorf("not a gem file name: %q", filename)
	}

	segments := strings.Split(base, "-")
	for i := 1; i < len(segments); i++ {
		last := i == len(segments)-1
		if !isVersionSegment(segments[i]) && !(last && isDigits(segments[i])) {
			continue
		}

		name := strings.Join(segments[:i], "-")
		if name == "" {
			break
		}

		platform := strings.Join(segments[i+1:], "-")
		if platform == "" {
			platform = entities.DefaultGemPlatform
		}

		return entities.PackageCoordinates{
			Name:     name,
			Version:  segments[i],
			Platform: platform,
		}, nil
	}

	return entities.PackageCoordinates{}, fmt.Errorf("no version in gem file name: %q", filename)
}

// isVersionSegment reports whether s looks like "<digits>.<rest>" where rest is
// alphanumeric with dots, e.g. "1.2.3" or "2.0.0.rc1"
func isVersionSegment(s string) bool {
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits == len(s) || s[digits] != '.' {
		return false
	}

	rest := s[digits+1:]
	if rest == "" || strings.HasSuffix(rest, ".") {
		return false
	}
	for _, r := range rest {
		isDigit := r >= '0' && r <= '9'
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isDigit && !isAlpha && r != '.' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
