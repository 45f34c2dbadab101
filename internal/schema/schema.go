// Package schema holds the declarative constraint table records are validated
// against, and loads it from JSON or YAML documents.
//
// Documents use a JSON-Schema-like subset:
//
//	{
//	  "title": "species",
//	  "required": ["scientific_name", "sr_no"],
//	  "properties": {
//	    "scientific_name": {"type": "string", "minLength": 1},
//	    "sr_no":           {"type": "integer", "minimum": 1},
//	    "leaf_type":       {"type": "string", "enum": ["Simple", "Compound"]},
//	    "habitat":         {"type": ["string", "null"]}
//	  }
//	}
//
// Array "items" constraints are accepted but not enforced: media list elements
// are checked by the cross-field rules instead.
package schema

import (
	"errors"
	"regexp"
	"sort"
)

// ErrInvalidSchema is returned for documents that cannot be turned into a Schema.
var ErrInvalidSchema = errors.New("invalid schema")

// FieldType is the JSON type a field's value must have.
type FieldType string

const (
	TypeAny     FieldType = ""
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

var knownTypes = map[FieldType]bool{
	TypeString:  true,
	TypeInteger: true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
}

// FieldSpec defines validation rules for a single record field.
type FieldSpec struct {
	Name       string         // Field name after column normalization
	Type       FieldType      // Expected type; TypeAny accepts everything
	Required   bool           // Field must be present and non-null
	Nullable   bool           // Null is an accepted value when present
	EnumValues []string       // Allowed values, compared on their string form
	MinLength  *int           // Minimum string length in runes
	MaxLength  *int           // Maximum string length in runes
	Minimum    *float64       // Inclusive numeric lower bound
	Maximum    *float64       // Inclusive numeric upper bound
	Pattern    *regexp.Regexp // Strings must match
}

// Schema is an ordered constraint table.
type Schema struct {
	Title  string
	Fields []FieldSpec
}

// Field returns the spec for name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Required returns the names of required fields in table order.
func (s *Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// sortFields orders fields by name so validation messages come out in a
// stable order regardless of document key order.
func sortFields(fields []FieldSpec) {
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})
}
