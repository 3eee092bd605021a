package result

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/FocuswithJustin/poslavu/core/errors"
)

// MarshalJSON writes r as a JSON object with fields in record order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for k, v := range r.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces r's fields with those of a flat JSON object,
// keeping document order. Scalars are coerced to text and numbers keep
// their literal form; nested objects and arrays are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errors.NewArgument("unmarshal json", "", err)
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.NewArgument("unmarshal json", "expected an object", nil)
	}

	fresh := &Record{}
	for {
		tok, err = dec.Token()
		if err != nil {
			return errors.NewArgument("unmarshal json", "truncated object", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			break
		}
		key, ok := tok.(string)
		if !ok {
			return errors.NewArgument("unmarshal json", fmt.Sprintf("expected a key, got %v", tok), nil)
		}

		tok, err = dec.Token()
		if err != nil {
			return errors.NewArgument("unmarshal json", "truncated object", err)
		}
		switch v := tok.(type) {
		case json.Delim:
			return &errors.ValidationError{
				Field:   key,
				Message: "nested objects and arrays have no text form",
				Err:     errors.ErrUnsupported,
			}
		case json.Number:
			// The decoder may hand out a number aliasing its buffer.
			fresh.SetString(key, strings.Clone(v.String()))
		default:
			if err := fresh.Set(key, v); err != nil {
				return err
			}
		}
	}

	if _, err := dec.Token(); err != io.EOF {
		return errors.NewArgument("unmarshal json", "trailing data after object", err)
	}

	*r = *fresh
	return nil
}
