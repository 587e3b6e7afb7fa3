package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/HendryAvila/habit-tracker/internal/activity"
	"gopkg.in/yaml.v3"
)

// ExportVersion is written into every export envelope.
const ExportVersion = "1"

// Format is an export/import encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: json, yaml", name)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ExportData is the full serializable dump of the activity log.
type ExportData struct {
	Version    string              `json:"version" yaml:"version"`
	ExportedAt time.Time           `json:"exported_at" yaml:"exported_at"`
	Activities []activity.Activity `json:"activities" yaml:"activities"`
}

// NewExport wraps records in an export envelope stamped with now.
func NewExport(records []activity.Activity, now time.Time) *ExportData {
	if records == nil {
		records = []activity.Activity{}
	}
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: now.UTC(),
		Activities: records,
	}
}

// Encode writes the export to w.
func (d *ExportData) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encoding yaml export: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encoding json export: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// DecodeExport reads an export envelope. A bare list of activities (the
// activities.json document itself) is accepted as well.
func DecodeExport(r io.Reader, format Format) (*ExportData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON, "":
		return decodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
}

func decodeJSON(data []byte) (*ExportData, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []activity.Activity
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("parsing activity list: %w", err)
		}
		return &ExportData{Activities: records}, nil
	}

	var export ExportData
	if err := json.Unmarshal(trimmed, &export); err != nil {
		return nil, fmt.Errorf("parsing json export: %w", err)
	}
	return &export, nil
}

func decodeYAML(data []byte) (*ExportData, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing yaml export: %w", err)
	}
	if len(node.Content) == 0 {
		return &ExportData{}, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var records []activity.Activity
		if err := node.Decode(&records); err != nil {
			return nil, fmt.Errorf("parsing activity list: %w", err)
		}
		return &ExportData{Activities: records}, nil
	}

	var export ExportData
	if err := node.Decode(&export); err != nil {
		return nil, fmt.Errorf("parsing yaml export: %w", err)
	}
	return &export, nil
}
