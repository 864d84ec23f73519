// Package loader reads and writes plan files. JSON and YAML documents share
// one envelope: {version, root}.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/adriangreen/fddplan/internal/plan"
)

// Version is the document version written by Save.
const Version = 1

var (
	// ErrNotFound indicates the plan file does not exist.
	ErrNotFound = errors.New("plan file not found")

	// ErrUnsupportedFormat indicates a file extension with no codec.
	ErrUnsupportedFormat = errors.New("unsupported plan file format")
)

// Format names a codec.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the codec from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Document is the on-disk envelope.
type Document struct {
	Version int           `json:"version" yaml:"version"`
	Root    plan.NodeData `json:"root" yaml:"root"`
}

// ParseError reports a file that could be read but not turned into a tree.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads a plan file and builds its tree. Warnings describe problems
// that were repaired while loading.
func Load(path string) (*plan.Tree, []plan.ValidationWarning, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	tree, warnings, err := Decode(data, format)
	if err != nil {
		return nil, nil, &ParseError{Path: path, Err: err}
	}
	return tree, warnings, nil
}

// Decode builds a tree from an encoded document.
func Decode(data []byte, format Format) (*plan.Tree, []plan.ValidationWarning, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if doc.Version > Version {
		return nil, nil, fmt.Errorf("document version %d is newer than supported version %d", doc.Version, Version)
	}
	if doc.Root.Kind == "" {
		return nil, nil, errors.New("document has no root node")
	}
	return plan.FromData(doc.Root)
}

// Encode serializes a tree in the given format.
func Encode(tree *plan.Tree, format Format) ([]byte, error) {
	doc := Document{Version: Version, Root: tree.Data()}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Save writes the tree to path, choosing the codec from the extension. The
// write is atomic (temp file + rename) so watchers never see a partial file.
func Save(path string, tree *plan.Tree) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(tree, format)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
