// Package transform holds the pure per-column value transformers applied
// while projecting legacy rows into the target schema.
package transform

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// isoMillis is the target timestamp layout: ISO-8601 UTC instant with
// millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z"

// EpochToTimestamp converts a legacy Unix-epoch seconds value to an ISO-8601
// UTC instant string. Zero, empty, nil, and non-numeric inputs yield nil:
// the legacy system used 0 for "never".
func EpochToTimestamp(v any) any {
	secs, ok := asInt64(v)
	if !ok || secs == 0 {
		return nil
	}
	return time.UnixMilli(secs * 1000).UTC().Format(isoMillis)
}

// IntToBool converts a legacy truthy integer to a boolean. Nil and
// non-numeric inputs are false.
func IntToBool(v any) any {
	n, ok := asInt64(v)
	return ok && n != 0
}

// ToString coerces the decoded value to a string for textual target columns.
// Nil stays nil.
func ToString(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return t
	}
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode produces a short random alphanumeric token for target columns
// the legacy schema never had, such as invite and reference codes. The
// alphabet omits easily confused characters.
func GenerateCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case string:
		if t == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
