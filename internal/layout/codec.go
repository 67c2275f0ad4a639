// Package layout reads and writes portable macro layouts in JSON, YAML or
// MessagePack.
package layout

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Codec encodes and decodes layout documents.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error
	// Name returns the codec identifier used for diagnostics.
	Name() string
}

// JSON is the default codec, compatible with .vil layout files.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSON) Name() string { return "json" }

// YAML stores layouts as YAML documents.
type YAML struct{}

func (YAML) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }
func (YAML) Name() string                       { return "yaml" }

// MsgPack stores layouts in MessagePack.
type MsgPack struct{}

func (MsgPack) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (MsgPack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (MsgPack) Name() string                       { return "msgpack" }

// ForPath selects a codec from the file extension. Unknown extensions use
// JSON.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML{}
	case ".msgpack", ".mpk":
		return MsgPack{}
	default:
		return JSON{}
	}
}

// ByName returns the codec called name.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json", "vil":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	case "msgpack":
		return MsgPack{}, nil
	}
	return nil, fmt.Errorf("unknown layout format %q", name)
}
