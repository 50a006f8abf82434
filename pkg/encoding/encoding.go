// Package encoding provides the output formats of the tool results,
// and lenient parsing of the structured tool input produced by LLM.
package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/llmutils"
	"gopkg.in/yaml.v3"
)

// Format is the name of the encoding
type Format = string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatTOML}

// Encoder marshals values in a format
type Encoder interface {
	Format() Format
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// ErrUnsupportedFormat is returned for unknown format names
var ErrUnsupportedFormat = errors.New("unsupported format")

// NewEncoder returns the encoder for the format
func NewEncoder(format Format) (Encoder, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return Text, nil
	case FormatJSON:
		return JSON, nil
	case FormatYAML, "yml":
		return YAML, nil
	case FormatTOML:
		return TOML, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
}

var (
	// Text encodes with fmt.Stringer
	Text Encoder = textEncoder{}
	// JSON encodes indented JSON, the decoding is lenient
	JSON Encoder = jsonEncoder{}
	// YAML encodes YAML
	YAML Encoder = yamlEncoder{}
	// TOML encodes TOML
	TOML Encoder = tomlEncoder{}
)

type textEncoder struct{}

func (textEncoder) Format() Format { return FormatText }

func (textEncoder) Marshal(v any) ([]byte, error) {
	if s, ok := v.(fmt.Stringer); ok {
		return []byte(s.String()), nil
	}
	return []byte(fmt.Sprint(v)), nil
}

func (textEncoder) Unmarshal(data []byte, v any) error {
	switch p := v.(type) {
	case *string:
		*p = strings.TrimSpace(string(data))
		return nil
	case *[]byte:
		*p = bytes.Clone(data)
		return nil
	}
	return errors.Newf("text: unable to decode into %T", v)
}

type jsonEncoder struct{}

func (jsonEncoder) Format() Format { return FormatJSON }

func (jsonEncoder) Marshal(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// Unmarshal accepts the JSON in fenced block or with text around it.
func (jsonEncoder) Unmarshal(data []byte, v any) error {
	data = llmutils.CleanJSON(llmutils.BytesTrimBackticks(data))
	if err := ljson.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "json: failed to decode")
	}
	return nil
}

type yamlEncoder struct{}

func (yamlEncoder) Format() Format { return FormatYAML }

func (yamlEncoder) Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return b.Bytes(), nil
}

func (yamlEncoder) Unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(llmutils.BytesTrimBackticks(data), v); err != nil {
		return errors.Wrap(err, "yaml: failed to decode")
	}
	return nil
}

type tomlEncoder struct{}

func (tomlEncoder) Format() Format { return FormatTOML }

func (tomlEncoder) Marshal(v any) ([]byte, error) {
	b, err := toml.Marshal(v)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

func (tomlEncoder) Unmarshal(data []byte, v any) error {
	if err := toml.Unmarshal(llmutils.BytesTrimBackticks(data), v); err != nil {
		return errors.Wrap(err, "toml: failed to decode")
	}
	return nil
}
