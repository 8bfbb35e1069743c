package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidConfig(t *testing.T) {
	f, err := Parse([]byte(`
uri: file:///var/lib/ttd/session.db
snap_interval: 2000
snap_history_length: 8
root_manifest_dir: /etc/ttd/roots
`))
	require.NoError(t, err)

	assert.Equal(t, "file:///var/lib/ttd/session.db", f.URI)
	assert.Equal(t, uint32(2000), f.SnapInterval)
	assert.Equal(t, uint32(8), f.SnapHistoryLength)
	assert.Equal(t, "/etc/ttd/roots", f.RootManifestDir)

	cfg := f.SessionConfig()
	assert.NoError(t, cfg.Validate())
}

func TestParse_InvalidConfigs(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing uri", "snap_interval: 10\nsnap_history_length: 2\n"},
		{"zero interval", "uri: u\nsnap_interval: 0\nsnap_history_length: 2\n"},
		{"zero history", "uri: u\nsnap_interval: 10\nsnap_history_length: 0\n"},
		{"unknown field", "uri: u\nsnap_interval: 10\nsnap_history_length: 2\nsnap_intervall: 5\n"},
		{"malformed yaml", "uri: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttd.yaml")
	content := "uri: file:///tmp/s.db\nsnap_interval: 100\nsnap_history_length: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/s.db", f.URI)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
