// ABOUTME: YAML manifest store format
// ABOUTME: Loads and saves resource graphs as human-editable YAML documents
package hx

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const manifestVersion = 1

type manifest struct {
	Version int       `yaml:"version"`
	Entries []*record `yaml:"entries"`
}

// LoadManifest reads a YAML manifest file into a Memory store
func LoadManifest(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return DecodeManifest(f)
}

// DecodeManifest parses a YAML manifest from r
func DecodeManifest(r io.Reader) (*Memory, error) {
	var m manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if err == io.EOF {
			return NewMemory(), nil
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Version > manifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}

	store := NewMemory()
	for i, rec := range m.Entries {
		e, err := rec.toEntry()
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
		if err := store.Append(e); err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
	}
	return store, nil
}

// SaveManifest writes every entry of s to a YAML manifest file
func SaveManifest(s Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	if err := EncodeManifest(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeManifest writes s as YAML to w
func EncodeManifest(s Store, w io.Writer) error {
	m := manifest{Version: manifestVersion}
	for _, e := range Entries(s) {
		m.Entries = append(m.Entries, fromEntry(e))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return enc.Close()
}
