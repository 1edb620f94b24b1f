package scenario

import (
	"github.com/valyala/fastjson"

	"cloudfest-chat/internal/registry"
)

// callerField extracts the "as" attribution every mutating step carries.
func callerField(v *fastjson.Value) (registry.Identity, error) {
	caller, err := stringField(v, "as")
	if err != nil {
		return registry.None, err
	}
	return registry.Identity(caller), nil
}

func stringField(v *fastjson.Value, name string) (string, error) {
	if !v.Exists(name) {
		return "", malformedf("missing field %q", name)
	}

	field := v.Get(name)
	if field.Type() != fastjson.TypeString {
		return "", malformedf("field %q must be a string", name)
	}

	b, _ := field.StringBytes()
	if len(b) == 0 {
		return "", malformedf("field %q must have non-zero length", name)
	}

	return string(b), nil
}

func intField(v *fastjson.Value, name string) (int64, error) {
	if !v.Exists(name) {
		return 0, malformedf("missing field %q", name)
	}

	n, err := v.Get(name).Int64()
	if err != nil {
		return 0, malformedf("field %q must be a 64-bit integer value", name)
	}

	return n, nil
}

func uintField(v *fastjson.Value, name string) (uint64, error) {
	if !v.Exists(name) {
		return 0, malformedf("missing field %q", name)
	}

	n, err := v.Get(name).Uint64()
	if err != nil {
		return 0, malformedf("field %q must be a non-negative 64-bit integer value", name)
	}

	return n, nil
}

func boolField(v *fastjson.Value, name string) (bool, error) {
	if !v.Exists(name) {
		return false, malformedf("missing field %q", name)
	}

	b, err := v.Get(name).Bool()
	if err != nil {
		return false, malformedf("field %q must be a boolean", name)
	}

	return b, nil
}
