package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

func TestGemFilenameParser_Parse(t *testing.T) {
	tests := []struct {
		filename string
		want     entities.PackageCoordinates
	}{
		{filename: "bar-2.0.0.gem", want: entities.PackageCoordinates{Name: "bar", Version: "2.0.0", Platform: "ruby"}},
		{filename: "rack-test-2.1.0.gem", want: entities.PackageCoordinates{Name: "rack-test", Version: "2.1.0", Platform: "ruby"}},
		{filename: "nokogiri-1.15.0-x86_64-linux.gem", want: entities.PackageCoordinates{Name: "nokogiri", Version: "1.15.0", Platform: "x86_64-linux"}},
		{filename: "rails-7.1.0.rc1.gem", want: entities.PackageCoordinates{Name: "rails", Version: "7.1.0.rc1", Platform: "ruby"}},
		{filename: "ruby-2fa-0.1.0.gem", want: entities.PackageCoordinates{Name: "ruby-2fa", Version: "0.1.0", Platform: "ruby"}},
		{filename: "jruby-openssl-0.14.2-java.gem", want: entities.PackageCoordinates{Name: "jruby-openssl", Version: "0.14.2", Platform: "java"}},
		{filename: "foo-10.gem", want: entities.PackageCoordinates{Name: "foo", Version: "10", Platform: "ruby"}},
		{filename: "net-http2-3.gem", want: entities.PackageCoordinates{Name: "net-http2", Version: "3", Platform: "ruby"}},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := GemFilenameParser{}.Parse(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGemFilenameParser_Invalid(t *testing.T) {
	for _, filename := range []string{
		"bar.gem",
		".gem",
		"bar-latest.gem",
		"2.0.0.gem",
		"-2.0.0.gem",
		"bar-2.0.0.tar.gz",
		"bar-2..gem",
		"bar-10-java.gem",
	} {
		t.Run(filename, func(t *testing.T) {
			_, err := GemFilenameParser{}.Parse(filename)
			assert.Error(t, err)
		})
	}
}
