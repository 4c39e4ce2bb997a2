package templates

import (
	"fmt"
	"strings"

	"github.com/dynasql/dynasql/pkg/apperrors"
	"github.com/dynasql/dynasql/pkg/params"
)

// ValidateParameters checks a parameter set against template metadata.
// A nil Metadata passes trivially (the template's shape is unknown, so there
// is nothing to check).
//
// All missing required parameters are reported together in one error. Type
// checks run afterwards and short-circuit on the first mismatch. Parameters
// with no declared type pass through unchecked.
func ValidateParameters(meta *Metadata, supplied map[string]params.Value) error {
	if meta == nil {
		return nil
	}

	var missing []string
	for _, name := range meta.Required {
		if _, ok := supplied[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &apperrors.ValidationError{
			Reason: "missing required parameters: " + strings.Join(missing, ", "),
		}
	}

	for name, value := range supplied {
		declared, ok := meta.Types[name]
		if !ok {
			continue
		}
		if err := checkType(name, declared, value); err != nil {
			return err
		}
	}

	return nil
}

func checkType(name string, declared ParamType, value params.Value) error {
	switch declared {
	case TypeInteger:
		// Booleans coerce to 0/1 and string forms are parsed, matching the
		// loose conversion the templates were written against.
		if _, ok := value.AsInt(); !ok {
			return &apperrors.ValidationError{
				Reason: fmt.Sprintf("parameter '%s' must be an integer", name),
			}
		}
	case TypeDate:
		// Structural check only: a date-like string of plausible length.
		// Calendar validity is the database's concern.
		if !value.IsStringLike() || len(value.Text()) < 8 {
			return &apperrors.ValidationError{
				Reason: fmt.Sprintf("parameter '%s' must be a date string (YYYY-MM-DD)", name),
			}
		}
	case TypeBoolean:
		if value.Kind() == params.KindBoolean {
			return nil
		}
		switch value.Text() {
		case "true", "false", "0", "1":
			if value.IsStringLike() {
				return nil
			}
		}
		return &apperrors.ValidationError{
			Reason: fmt.Sprintf("parameter '%s' must be a boolean", name),
		}
	case TypeString:
		// Any value has a string form; nothing to check.
	}
	return nil
}
