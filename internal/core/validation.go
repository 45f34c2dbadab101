package core

// validation.go checks a cleaned batch against a declared schema.
//
// Validation happens at two levels:
//  1. Column check: every required schema field must exist as a column.
//     A missing one is a configuration error and aborts the run.
//  2. Record check: each cell is checked against its FieldSpec, then each
//     media item against the registered cross-field rules.
//
// Record checks never stop at the first problem. Every violation in the batch
// is collected so the audit report shows all of them at once.

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/florasheet/internal/schema"
)

// ErrMissingColumns is matched by ColumnError.
var ErrMissingColumns = errors.New("missing required columns")

// ColumnError lists required schema fields that the cleaned table lacks.
type ColumnError struct {
	Missing []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Missing, ", "))
}

func (e *ColumnError) Is(target error) bool {
	return target == ErrMissingColumns
}

// ValidationError represents a single validation error for a record field.
type ValidationError struct {
	Record   int    // 1-based position in the cleaned batch
	Identity string // Species label, see Row.Identity
	Field    string // Field name, with an element index for media items
	Value    string // The offending value, when there is one
	Message  string // Human-readable error message
}

func (e ValidationError) Error() string {
	prefix := fmt.Sprintf("record %d (%s)", e.Record, e.Identity)
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// ValidationOutcome is the batch verdict. Passed is true only when Errors is empty.
type ValidationOutcome struct {
	Passed bool
	Errors []ValidationError
}

// Messages returns the error messages in the order they were found.
func (o ValidationOutcome) Messages() []string {
	out := make([]string, len(o.Errors))
	for i, e := range o.Errors {
		out[i] = e.Error()
	}
	return out
}

// CheckColumns returns a *ColumnError when a required schema field is not a
// column of t.
func CheckColumns(t Table, s *schema.Schema) error {
	var missing []string
	for _, name := range s.Required() {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ColumnError{Missing: missing}
	}
	return nil
}

// Validator validates records against a schema and a set of cross-field rules.
type Validator struct {
	schema      *schema.Schema
	rules       []Rule
	mediaFields []string
}

// NewValidator creates a validator. A nil rules slice uses the registered
// rules; nil mediaFields uses DefaultMediaFields.
func NewValidator(s *schema.Schema, rules []Rule, mediaFields []string) *Validator {
	if rules == nil {
		rules = Rules()
	}
	if mediaFields == nil {
		mediaFields = DefaultMediaFields
	}
	return &Validator{schema: s, rules: rules, mediaFields: mediaFields}
}

// Validate checks every record and collects every violation.
func (v *Validator) Validate(t Table) ValidationOutcome {
	var errs []ValidationError
	for i, row := range t.Rows {
		errs = append(errs, v.ValidateRecord(i+1, row)...)
	}
	return ValidationOutcome{Passed: len(errs) == 0, Errors: errs}
}

// ValidateRecord returns all field-level and cross-field errors for one row.
// position is the 1-based record number used in messages.
func (v *Validator) ValidateRecord(position int, row Row) []ValidationError {
	var errs []ValidationError
	identity := row.Identity()

	for _, spec := range v.schema.Fields {
		value, present := row[spec.Name]
		if !present {
			if spec.Required {
				errs = append(errs, ValidationError{
					Record:   position,
					Identity: identity,
					Field:    spec.Name,
					Message:  "missing required field",
				})
			}
			continue
		}
		if err := ValidateCell(value, spec); err != nil {
			errs = append(errs, ValidationError{
				Record:   position,
				Identity: identity,
				Field:    spec.Name,
				Value:    cellString(value),
				Message:  err.Error(),
			})
		}
	}

	for _, field := range v.mediaFields {
		list, ok := row[field].([]any)
		if !ok {
			continue
		}
		for j, el := range list {
			item, ok := ParseMediaItem(el)
			if !ok {
				continue
			}
			for _, rule := range v.rules {
				msg, failed := rule.Check(item)
				if !failed {
					continue
				}
				errs = append(errs, ValidationError{
					Record:   position,
					Identity: identity,
					Field:    fmt.Sprintf("%s[%d]", field, j),
					Value:    item.File,
					Message:  fmt.Sprintf("%s: %s", mediaLabel(item), msg),
				})
			}
		}
	}

	return errs
}

func mediaLabel(item MediaItem) string {
	if strings.TrimSpace(item.Type) == "" {
		return "media item"
	}
	return item.Type
}

// ValidateCell validates a single cell value against a field specification.
// Returns nil if valid, or an error describing the problem.
func ValidateCell(value any, spec schema.FieldSpec) error {
	if IsNull(value) {
		if spec.Required && !spec.Nullable {
			return fmt.Errorf("required field is null")
		}
		return nil
	}

	if !matchesType(value, spec.Type) {
		return fmt.Errorf("must be of type %s, got %s", spec.Type, jsonTypeName(value))
	}

	if len(spec.EnumValues) > 0 {
		s := cellString(value)
		found := false
		for _, ev := range spec.EnumValues {
			if ev == s {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("value %q must be one of: %s", s, strings.Join(spec.EnumValues, ", "))
		}
	}

	if s, ok := value.(string); ok {
		n := utf8.RuneCountInString(s)
		if spec.MinLength != nil && n < *spec.MinLength {
			return fmt.Errorf("length %d is below minimum %d", n, *spec.MinLength)
		}
		if spec.MaxLength != nil && n > *spec.MaxLength {
			return fmt.Errorf("length %d exceeds maximum %d", n, *spec.MaxLength)
		}
		if spec.Pattern != nil && !spec.Pattern.MatchString(s) {
			return fmt.Errorf("value %q does not match pattern %s", s, spec.Pattern)
		}
	}

	if f, ok := numericValue(value); ok {
		if spec.Minimum != nil && f < *spec.Minimum {
			return fmt.Errorf("value %s is below minimum %s", formatNumber(f), formatNumber(*spec.Minimum))
		}
		if spec.Maximum != nil && f > *spec.Maximum {
			return fmt.Errorf("value %s exceeds maximum %s", formatNumber(f), formatNumber(*spec.Maximum))
		}
	}

	return nil
}

func matchesType(value any, ft schema.FieldType) bool {
	switch ft {
	case schema.TypeAny:
		return true
	case schema.TypeString:
		_, ok := value.(string)
		return ok
	case schema.TypeInteger:
		switch v := value.(type) {
		case int, int64:
			return true
		case float64:
			return v == math.Trunc(v) && !math.IsInf(v, 0)
		}
		return false
	case schema.TypeNumber:
		_, ok := numericValue(value)
		return ok
	case schema.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case schema.TypeArray:
		_, ok := value.([]any)
		return ok
	case schema.TypeObject:
		_, ok := value.(map[string]any)
		return ok
	default:
		return false
	}
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// jsonTypeName names a cell's type the way schema documents do.
func jsonTypeName(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case int, int64:
		return "integer"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func formatNumber(f float64) string {
	return cellString(f)
}
