// Package normalize turns decoded spill collections and AIS tables into
// validated domain records. Identifier typing is settled here once.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ID formats an identifier value as a string. Integral numbers lose any
// fractional or exponent notation, so 123, 123.0, "123.0" and "123" agree.
// Text ids only lose a zero fraction; other spellings stay distinct.
func ID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return trimZeroFraction(strings.TrimSpace(x))
	case json.Number:
		return canonicalNumeric(x.String())
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// canonicalNumeric rewrites decimal or exponent spellings of integral
// JSON numbers.
func canonicalNumeric(s string) string {
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return s
	}
	return formatFloat(f)
}

// trimZeroFraction turns "123.00" into "123". Anything other than digits,
// a dot and zeros is returned unchanged, so leading zeros survive.
func trimZeroFraction(s string) string {
	whole, frac, ok := strings.Cut(s, ".")
	if !ok || whole == "" || frac == "" {
		return s
	}
	if strings.Trim(whole, "0123456789") != "" || strings.Trim(frac, "0") != "" {
		return s
	}
	return whole
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// number reads a finite float from a decoded cell.
func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// text renders a decoded cell for display or time parsing.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return formatFloat(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
