// Package entities defines core domain models and data structures.
package entities

import (
	"net/url"
	"path"
	"path/filepath"
)

// SignatureSuffix is appended to a package path or URL to locate its detached signature
const SignatureSuffix = ".asc"

// PackageRef identifies a package artifact to be verified.
// It is passed by value and never mutated after construction.
type PackageRef struct {
	Path          string // Local path of the artifact
	URL           string // Origin URL (optional)
	SignaturePath string // Explicit detached signature path (optional)
	SignatureURL  string // Explicit signature URL (optional)
	PublicKeyPath string // Explicit public key, bypasses keyring lookup (optional)
	GnupgHome     string // Caller supplied keyring home, never deleted (optional)
}

// NewPackageRef creates a reference for a local artifact
func NewPackageRef(packagePath string) PackageRef {
	return PackageRef{Path: packagePath}
}

// PackageRefFromURL derives the local path of a downloaded artifact from its origin URL
func PackageRefFromURL(rawURL, downloadDir string) PackageRef {
	return PackageRef{
		Path: filepath.Join(downloadDir, FilenameFromURL(rawURL)),
		URL:  rawURL,
	}
}

// FilenameFromURL returns the last path element of a URL
func FilenameFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(rawURL)
}

// Ext returns the file extension used for verifier dispatch (e.g. ".gz", ".gem")
func (p PackageRef) Ext() string {
	return filepath.Ext(p.Path)
}

// Filename returns the artifact's base file name
func (p PackageRef) Filename() string {
	return filepath.Base(p.Path)
}

// DisplayName is the name printed in result lines
func (p PackageRef) DisplayName() string {
	if p.URL != "" {
		return FilenameFromURL(p.URL)
	}
	return p.Filename()
}

// SignatureFile returns where the detached signature lives on disk: the explicit
// path if set, else "<package>.asc"
func (p PackageRef) SignatureFile() string {
	if p.SignaturePath != "" {
		return p.SignaturePath
	}
	return p.Path + SignatureSuffix
}

// SignatureSource returns the URL a missing signature is fetched from, or "" if unknown
func (p PackageRef) SignatureSource() string {
	if p.SignatureURL != "" {
		return p.SignatureURL
	}
	if p.URL != "" {
		return p.URL + SignatureSuffix
	}
	return ""
}
