package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a schema document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported schema file type %q (use .json, .yaml or .yml)",
			ErrInvalidSchema, filepath.Ext(path))
	}
}

// LoadFile reads and parses the schema document at path.
func LoadFile(path string) (*Schema, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schema %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, format)
}

// document is the on-disk shape shared by the JSON and YAML encodings.
type document struct {
	Title      string                 `json:"title" yaml:"title"`
	Required   []string               `json:"required" yaml:"required"`
	Properties map[string]propertyDoc `json:"properties" yaml:"properties"`
}

type propertyDoc struct {
	Type      typeList `json:"type" yaml:"type"`
	Enum      []any    `json:"enum" yaml:"enum"`
	MinLength *int     `json:"minLength" yaml:"minLength"`
	MaxLength *int     `json:"maxLength" yaml:"maxLength"`
	Minimum   *float64 `json:"minimum" yaml:"minimum"`
	Maximum   *float64 `json:"maximum" yaml:"maximum"`
	Pattern   string   `json:"pattern" yaml:"pattern"`
	Items     any      `json:"items" yaml:"items"`
}

// typeList accepts both "type": "string" and "type": ["string", "null"].
type typeList []string

func (t *typeList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = typeList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("type must be a string or a list of strings")
	}
	*t = many
	return nil
}

func (t *typeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*t = typeList{value.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*t = many
		return nil
	default:
		return fmt.Errorf("type must be a string or a list of strings")
	}
}

// Parse decodes a schema document.
func Parse(r io.Reader, format Format) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSchema)
	}

	var doc document
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidSchema, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	return doc.build()
}

// build converts the decoded document into a Schema, collecting every problem
// instead of stopping at the first.
func (d document) build() (*Schema, error) {
	if len(d.Properties) == 0 && len(d.Required) == 0 {
		return nil, fmt.Errorf("%w: no properties or required fields declared", ErrInvalidSchema)
	}

	required := make(map[string]bool, len(d.Required))
	for _, name := range d.Required {
		required[name] = true
	}

	var errs []error
	fields := make([]FieldSpec, 0, len(d.Properties)+len(d.Required))

	for name, prop := range d.Properties {
		spec, err := prop.build(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		spec.Required = required[name]
		fields = append(fields, spec)
	}

	// Required names without a property entry are presence-only checks.
	for name := range required {
		if _, ok := d.Properties[name]; !ok {
			fields = append(fields, FieldSpec{Name: name, Required: true})
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, errors.Join(errs...))
	}

	sortFields(fields)
	return &Schema{Title: d.Title, Fields: fields}, nil
}

func (p propertyDoc) build(name string) (FieldSpec, error) {
	spec := FieldSpec{
		Name:      name,
		MinLength: p.MinLength,
		MaxLength: p.MaxLength,
		Minimum:   p.Minimum,
		Maximum:   p.Maximum,
	}

	var types []FieldType
	for _, t := range p.Type {
		ft := FieldType(strings.ToLower(strings.TrimSpace(t)))
		if ft == "null" {
			spec.Nullable = true
			continue
		}
		if !knownTypes[ft] {
			return spec, fmt.Errorf("field %q: unknown type %q", name, t)
		}
		types = append(types, ft)
	}
	switch len(types) {
	case 0:
		spec.Type = TypeAny
	case 1:
		spec.Type = types[0]
	default:
		return spec, fmt.Errorf("field %q: at most one non-null type is supported, got %v", name, p.Type)
	}

	for _, v := range p.Enum {
		if v == nil {
			spec.Nullable = true
			continue
		}
		spec.EnumValues = append(spec.EnumValues, fmt.Sprint(v))
	}
	if p.Enum != nil && len(p.Enum) == 0 {
		return spec, fmt.Errorf("field %q: enum must list at least one value", name)
	}

	if p.MinLength != nil && p.MaxLength != nil && *p.MinLength > *p.MaxLength {
		return spec, fmt.Errorf("field %q: minLength %d exceeds maxLength %d", name, *p.MinLength, *p.MaxLength)
	}
	if p.Minimum != nil && p.Maximum != nil && *p.Minimum > *p.Maximum {
		return spec, fmt.Errorf("field %q: minimum %v exceeds maximum %v", name, *p.Minimum, *p.Maximum)
	}

	if p.Pattern != "" {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return spec, fmt.Errorf("field %q: bad pattern: %v", name, err)
		}
		spec.Pattern = re
	}

	return spec, nil
}
