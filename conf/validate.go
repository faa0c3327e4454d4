package conf

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// validateField evaluates a validate tag expression against a decoded
// field. The expression sees the field as "value" and must yield true.
func validateField(fieldKey, rule string, value any) error {
	out, err := expr.Eval(rule, map[string]any{"value": value})
	if err != nil {
		return fmt.Errorf("%w: key %q validate %q: %v", ErrParse, fieldKey, rule, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return fmt.Errorf("%w: key %q validate %q: expression is not boolean", ErrParse, fieldKey, rule)
	}
	if !ok {
		return fmt.Errorf("%w: key %q failed validation %q (value %v)", ErrParse, fieldKey, rule, value)
	}
	return nil
}
