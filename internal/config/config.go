// Package config loads the host-side session configuration file: where the
// log and snapshots are stored, how often snapshots are taken, and how much
// snapshot history is kept for reverse time-travel.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prince156/ChakraCore/internal/session"
)

// File is the on-disk YAML session configuration.
type File struct {
	// URI is the storage location for the session database.
	URI string `yaml:"uri"`

	// SnapInterval is the number of log events between automatic
	// snapshots.
	SnapInterval uint32 `yaml:"snap_interval"`

	// SnapHistoryLength is how many past snapshots to retain.
	SnapHistoryLength uint32 `yaml:"snap_history_length"`

	// RootManifestDir optionally points at the CUE well-known root
	// manifests for this deployment.
	RootManifestDir string `yaml:"root_manifest_dir,omitempty"`
}

// Load reads and validates a session configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session config: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates session configuration bytes.
// Unknown fields are rejected: a typoed key silently falling back to a
// default would change snapshot cadence without anyone noticing.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse session config: %w", err)
	}

	if err := f.SessionConfig().Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// SessionConfig converts the file to the session's runtime configuration.
func (f *File) SessionConfig() session.Config {
	return session.Config{
		URI:               f.URI,
		SnapInterval:      f.SnapInterval,
		SnapHistoryLength: f.SnapHistoryLength,
	}
}
