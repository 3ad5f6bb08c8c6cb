package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// evalExtra evaluates the attributes of one extra block. Values must be
// literals convertible to strings; extra properties cannot reference each
// other.
func evalExtra(body hcl.Body) (map[string]string, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid extra block: %w", diags)
	}

	out := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("extra property %q: %w", name, diags)
		}
		if val.IsNull() || !val.IsKnown() {
			return nil, fmt.Errorf("extra property %q has no value", name)
		}
		str, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, fmt.Errorf("extra property %q must be a string: %w", name, err)
		}
		out[name] = str.AsString()
	}
	return out, nil
}

// newEvalContext exposes extra properties as the `extra` object.
func newEvalContext(extras map[string]string) *hcl.EvalContext {
	vals := make(map[string]cty.Value, len(extras))
	for name, value := range extras {
		vals[name] = cty.StringVal(value)
	}
	extra := cty.EmptyObjectVal
	if len(vals) > 0 {
		extra = cty.ObjectVal(vals)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"extra": extra},
	}
}
