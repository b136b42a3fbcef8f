package store

import (
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/strata/internal/value"
)

// marshalData converts a record to canonical JSON TEXT for storage and
// returns its digest.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalData(data value.Object) (text string, digest string, err error) {
	raw, err := value.MarshalCanonical(data)
	if err != nil {
		return "", "", fmt.Errorf("marshal data: %w", err)
	}
	digest, err = value.Digest(value.DomainRecord, data)
	if err != nil {
		return "", "", fmt.Errorf("marshal data: %w", err)
	}
	return string(raw), digest, nil
}

// unmarshalData parses stored JSON TEXT. Field types are restored by the
// record that loads it.
func unmarshalData(text string) (value.Object, error) {
	if text == "" {
		return value.Object{}, nil
	}
	obj, err := value.ParseJSONObject([]byte(text))
	if err != nil {
		return value.Object{}, fmt.Errorf("unmarshal data: %w", err)
	}
	return obj, nil
}

// sqlArg converts v to the SQL value json_extract yields for it.
func sqlArg(v value.Value) (any, error) {
	switch val := v.(type) {
	case value.Null:
		return nil, nil
	case value.Bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case value.I32:
		return int64(val), nil
	case value.I64:
		return int64(val), nil
	case value.F32:
		return float64(val), nil
	case value.F64:
		return float64(val), nil
	case value.String:
		return norm.NFC.String(string(val)), nil
	case value.ObjectID:
		return norm.NFC.String(string(val)), nil
	case value.DateTime:
		return val.Time().Format(time.RFC3339Nano), nil
	case value.Array, value.Object:
		raw, err := value.MarshalCanonical(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
	return nil, fmt.Errorf("value of kind %s cannot be compared in storage", value.KindOf(v))
}

// jsonPath addresses a top-level field in json_extract.
func jsonPath(field string) string {
	return fmt.Sprintf(`$."%s"`, field)
}
