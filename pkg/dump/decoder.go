package dump

import (
	"strconv"
	"strings"
)

// Decode converts one raw field token into a typed scalar. It never fails:
//
//   - a literal NULL (any case) decodes to nil,
//   - a token bounded by matching quotes decodes to the unescaped string,
//   - otherwise a numeric parse is attempted (int64, then float64),
//   - anything else is returned as the trimmed raw string.
//
// A quoted "NULL" is a three-letter string, not nil. Ambiguous input degrades
// to the original token so the projector, which knows the target column type,
// decides what to do with it.
func Decode(token string) any {
	token = strings.TrimSpace(token)

	if strings.EqualFold(token, "NULL") {
		return nil
	}

	if len(token) >= 2 {
		first, last := token[0], token[len(token)-1]
		if (first == '\'' || first == '"') && first == last {
			return unescape(token[1 : len(token)-1])
		}
	}

	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}

	return token
}

// unescape resolves C-style backslash sequences produced by the legacy
// exporter. Unknown escapes keep the escaped character as-is.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i == len(s)-1 {
			b.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		default:
			// \', \", \\ and anything else: the character itself.
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
