package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/notekeeper/pkg/core"
)

// Codec converts the whole note collection to and from its file form.
type Codec interface {
	Decode(data []byte) ([]core.Note, error)
	Encode(notes []core.Note) ([]byte, error)
	Name() string
}

// DefaultCodecs maps file extensions to codecs.
func DefaultCodecs() map[string]Codec {
	return map[string]Codec{
		".json": JSONCodec{},
		".yaml": YAMLCodec{},
		".yml":  YAMLCodec{},
	}
}

// CodecFor picks the codec by the extension of path, falling back to JSON.
func CodecFor(path string) Codec {
	if c, ok := DefaultCodecs()[strings.ToLower(filepath.Ext(path))]; ok {
		return c
	}
	return JSONCodec{}
}

// --- JSON Codec ---

// JSONCodec stores the collection as an indented JSON array.
type JSONCodec struct{}

func (JSONCodec) Decode(data []byte) ([]core.Note, error) { return core.DecodeNotes(data) }

func (JSONCodec) Encode(notes []core.Note) ([]byte, error) {
	data, err := core.EncodeNotes(notes)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (JSONCodec) Name() string { return "json" }

// --- YAML Codec ---

// YAMLCodec stores the collection as a YAML sequence.
type YAMLCodec struct{}

// Decode goes through the JSON decoder so legacy field names and
// validation rules are shared with the JSON form.
func (YAMLCodec) Decode(data []byte) ([]core.Note, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []core.Note{}, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid yaml: %v", core.ErrStorageCorrupt, err)
	}
	if raw == nil {
		return []core.Note{}, nil
	}

	if records, ok := raw.([]any); ok {
		for _, r := range records {
			if fields, ok := r.(map[string]any); ok {
				stringifyScalars(fields)
			}
		}
	}

	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStorageCorrupt, err)
	}
	return core.DecodeNotes(asJSON)
}

// textFields are note fields stored as strings. Hand-edited YAML often
// leaves them unquoted (id: 1), which YAML reads as numbers or booleans.
var textFields = []string{"id", "_id", "title", "category", "content"}

func stringifyScalars(fields map[string]any) {
	for _, name := range textFields {
		switch v := fields[name].(type) {
		case int:
			fields[name] = strconv.Itoa(v)
		case uint64:
			fields[name] = strconv.FormatUint(v, 10)
		case float64:
			fields[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[name] = strconv.FormatBool(v)
		}
	}
}

func (YAMLCodec) Encode(notes []core.Note) ([]byte, error) {
	if notes == nil {
		notes = []core.Note{}
	}
	return yaml.Marshal(notes)
}

func (YAMLCodec) Name() string { return "yaml" }
