package result

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/FocuswithJustin/poslavu/core/errors"
)

// Coerce returns the text form of v. Supported types:
//
//	nil                  ""
//	string, []byte       as is
//	bool                 "true" / "false"
//	integers             base 10
//	float32, float64     shortest decimal form, no exponent
//	json.Number          literal text
//	time.Time            RFC 3339
//	fmt.Stringer, error  String() / Error(); "" for a nil pointer
//
// Any other type yields an error wrapping errors.ErrUnsupported.
func Coerce(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case fmt.Stringer:
		if isNilPointer(v) {
			return "", nil
		}
		return v.String(), nil
	case error:
		if isNilPointer(v) {
			return "", nil
		}
		return v.Error(), nil
	}
	return "", errors.NewUnsupported(fmt.Sprintf("value type %T", v), "no text form")
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// fieldError ties a coercion failure to the field being set.
type fieldError struct {
	key string
	err error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.key, e.err)
}

func (e *fieldError) Unwrap() error {
	return e.err
}
