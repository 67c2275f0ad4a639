package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ObiWanKeoni/vial-gui/internal/action"
)

// Document is the file form of a macro layout. Macros keeps the same shape
// as the "macro" entry of a .vil keyboard layout file.
type Document struct {
	Version  int               `json:"version" yaml:"version" msgpack:"version"`
	Protocol int               `json:"protocol,omitempty" yaml:"protocol,omitempty" msgpack:"protocol,omitempty"`
	SavedAt  time.Time         `json:"saved_at" yaml:"saved_at" msgpack:"saved_at"`
	Macros   [][]action.Record `json:"macro" yaml:"macro" msgpack:"macro"`
}

const currentVersion = 1

// NewDocument wraps exported macros.
func NewDocument(macros [][]action.Record, protocol action.Version) Document {
	return Document{
		Version:  currentVersion,
		Protocol: int(protocol),
		SavedAt:  time.Now().UTC(),
		Macros:   macros,
	}
}

// Macros returns the macro list of a decoded document. v may be a full
// layout (an object with a "macro" key) or the bare macro list. Anything
// else is returned unchanged for the importer to reject.
func Macros(v any) any {
	switch doc := v.(type) {
	case map[string]any:
		return doc["macro"]
	case map[any]any:
		return doc["macro"]
	}
	return v
}

// Decode parses data with codec into a generic value.
func Decode(data []byte, codec Codec) (any, error) {
	var v any
	if err := codec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s layout: %w", codec.Name(), err)
	}
	return v, nil
}

// ReadFile reads a layout file and returns its macro list.
func ReadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	v, err := Decode(data, ForPath(path))
	if err != nil {
		return nil, err
	}
	return Macros(v), nil
}

// WriteFile writes doc to path atomically using a temporary file and rename.
func WriteFile(path string, doc Document) error {
	data, err := ForPath(path).Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		if rmErr := os.Remove(tempPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("failed to rename temp file: %w (cleanup: %v)", err, rmErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
