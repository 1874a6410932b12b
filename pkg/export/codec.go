package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/phylolayout/pkg/errors"
)

// Format is a document serialisation format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatBSON Format = "bson"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatBSON}

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatJSON, FormatYAML, FormatBSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatJSON
}

// Marshal serialises d. JSON output is indented.
func Marshal(d *Document, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(d, "", "  ")
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatBSON:
		return bson.Marshal(d)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
}

// Unmarshal parses a document and checks that every edge refers to a node.
func Unmarshal(data []byte, f Format) (*Document, error) {
	var d Document
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &d)
	case FormatYAML:
		err = yaml.Unmarshal(data, &d)
	case FormatBSON:
		err = bson.Unmarshal(data, &d)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal %s document", f)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Document) validate() error {
	if len(d.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "document has no nodes")
	}
	ids := make(map[int]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if err := errors.ValidateLabel(n.Label); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range d.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d -> %d refers to an unknown node", e.Source, e.Target)
		}
	}
	return nil
}

// WriteFile writes d in the format implied by the path's extension.
func WriteFile(d *Document, path string) error {
	data, err := Marshal(d, FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a document in the format implied by the path's extension.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data, FormatFromPath(path))
}
