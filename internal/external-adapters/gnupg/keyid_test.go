package gnupg

import (
	"context"
	"testing"

	"github.com/jmgilman/go/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listPacketsOutput = `# off=0 ctb=89 tag=2 hlen=3 plen=563
:signature packet: algo 1, keyid 7f92e05b31093bef
	version 4, created 1700000000, md5len 0, sigclass 0x00
	digest algo 10, begin of digest 3a 4c
	hashed subpkt 33 len 21 (issuer fpr v4 0123456789ABCDEF01237F92E05B31093BEF)
	hashed subpkt 2 len 4 (sig created 2023-11-14)
	subpkt 16 len 8 (issuer key ID 7F92E05B31093BEF)
	data: [4096 bits]
`

func TestParseListPackets(t *testing.T) {
	keyID, err := ParseListPackets(listPacketsOutput)
	require.NoError(t, err)
	assert.Equal(t, "7F92E05B31093BEF", keyID)
}

func TestParseListPackets_Invalid(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{name: "empty", out: ""},
		{name: "no signature packet", out: ":public key packet:\n\tversion 4, algo 1, created 1700000000\n"},
		{name: "signature without keyid", out: ":signature packet: algo 1\n"},
		{name: "malformed keyid", out: ":signature packet: algo 1, keyid XYZ\n"},
		{
			name: "different keys",
			out:  ":signature packet: algo 1, keyid 7F92E05B31093BEF\n:signature packet: algo 1, keyid 0123456789ABCDEF\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseListPackets(tt.out)
			assert.Error(t, err)
		})
	}
}

func TestParseListPackets_RepeatedSameKey(t *testing.T) {
	out := ":signature packet: algo 1, keyid 7F92E05B31093BEF\n:signature packet: algo 1, keyid 7f92e05b31093bef\n"
	keyID, err := ParseListPackets(out)
	require.NoError(t, err)
	assert.Equal(t, "7F92E05B31093BEF", keyID)
}

func TestKeyIDExtractor_ExtractKeyID(t *testing.T) {
	runner := &fakeRunner{results: map[string]*exec.Result{
		"--list-packets": {Stdout: listPacketsOutput},
	}}

	keyID, err := NewKeyIDExtractor("gpg", runner).ExtractKeyID(context.Background(), "foo.tar.gz.asc")
	require.NoError(t, err)
	assert.Equal(t, "7F92E05B31093BEF", keyID)
	assert.Equal(t, []string{"gpg --batch --no-tty --list-packets foo.tar.gz.asc"}, runner.commands())
}

func TestKeyIDExtractor_CommandFails(t *testing.T) {
	runner := &fakeRunner{results: map[string]*exec.Result{
		"--list-packets": {ExitCode: 2, Stderr: "gpg: no valid OpenPGP data found.\n"},
	}}

	_, err := NewKeyIDExtractor("gpg", runner).ExtractKeyID(context.Background(), "foo.tar.gz.asc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid OpenPGP data found")
}
