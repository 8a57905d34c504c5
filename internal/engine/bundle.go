package engine

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BundleVersion tags every exported bundle.
const BundleVersion = "1.0"

// Bundle is a snapshot framed for export.
type Bundle struct {
	Snapshot   `yaml:",inline"`
	ExportedAt time.Time `json:"exportDate" yaml:"exportDate"`
	Version    string    `json:"version" yaml:"version"`
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func (t *Tracker) ExportBundle() Bundle {
	return Bundle{Snapshot: t.Snapshot(), ExportedAt: t.clock.Now().UTC(), Version: BundleVersion}
}

// ImportBundle restores the bundle's snapshot. Export metadata is ignored.
func (t *Tracker) ImportBundle(b Bundle) []MalformedField {
	return t.Restore(b.Snapshot)
}

func EncodeBundle(b Bundle, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(b)
	case FormatJSON, "":
		return json.MarshalIndent(b, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// BundleInfo is the export metadata read back from a bundle.
type BundleInfo struct {
	ExportedAt time.Time
	Version    string
}

// DecodeBundle decodes a bundle field by field. YAML input is normalised to
// JSON first so both formats share the same tolerant decoder. Unknown fields
// are ignored.
func DecodeBundle(data []byte, f Format) (Snapshot, BundleInfo, []MalformedField, error) {
	if f == FormatYAML {
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Snapshot{}, BundleInfo{}, nil, fmt.Errorf("decode yaml bundle: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return Snapshot{}, BundleInfo{}, nil, fmt.Errorf("decode yaml bundle: %w", err)
		}
		data = converted
	}

	s, bad, err := DecodeSnapshotJSON(data)
	if err != nil {
		return Snapshot{}, BundleInfo{}, nil, err
	}

	var meta struct {
		ExportedAt *time.Time `json:"exportDate"`
		Version    string     `json:"version"`
	}
	var info BundleInfo
	if err := json.Unmarshal(data, &meta); err != nil {
		bad = append(bad, MalformedField{Field: "exportDate", Err: err})
	} else {
		info.Version = meta.Version
		if meta.ExportedAt != nil {
			info.ExportedAt = *meta.ExportedAt
		}
	}
	return s, info, bad, nil
}

// ImportData decodes and restores exported bytes in one step.
func (t *Tracker) ImportData(data []byte, f Format) (BundleInfo, []MalformedField, error) {
	s, info, bad, err := DecodeBundle(data, f)
	if err != nil {
		return BundleInfo{}, nil, err
	}
	return info, append(bad, t.ImportBundle(Bundle{Snapshot: s})...), nil
}
