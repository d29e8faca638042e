package dump

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shoplink/legacymigrate/pkg/apperrors"
)

// ExtractInsertValues finds every INSERT statement for the given table in the
// dump text and returns the VALUES body of each, in document order. Table
// identifiers may be backtick-quoted or bare; matching is case-insensitive.
//
// The returned substrings include everything between the VALUES keyword and
// the terminating semicolon. Semicolons inside quoted strings do not
// terminate a statement.
func ExtractInsertValues(dumpText, table string) []string {
	pattern := regexp.MustCompile(
		`(?is)INSERT\s+INTO\s+\x60?` + regexp.QuoteMeta(table) + `\x60?\s*(?:\([^)]*\)\s*)?VALUES\s*`)

	var bodies []string
	rest := dumpText
	for {
		loc := pattern.FindStringIndex(rest)
		if loc == nil {
			break
		}
		body, end := captureUntilStatementEnd(rest[loc[1]:])
		bodies = append(bodies, body)
		rest = rest[loc[1]+end:]
	}
	return bodies
}

// captureUntilStatementEnd scans forward to the first semicolon that is not
// inside a quoted string, returning the body before it and the offset just
// past it. If no terminator is found the whole remainder is returned.
func captureUntilStatementEnd(s string) (string, int) {
	inString := false
	var quote byte
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && ch == '\\':
			escaped = true
		case inString && ch == quote:
			inString = false
		case !inString && (ch == '\'' || ch == '"'):
			inString = true
			quote = ch
		case !inString && ch == ';':
			return s[:i], i + 1
		}
	}
	return s, len(s)
}

// TokenizeTuples splits the VALUES body of one INSERT statement into raw
// tuples. Each tuple is the ordered list of un-decoded literal substrings
// between top-level commas.
//
// Single forward scan: a parenthesis depth counter, an in-string flag with
// the active quote character, and an escape flag. A '(' at depth 0 opens a
// tuple; a ')' returning to depth 0 closes it; a ',' at depth 1 outside any
// string is a field boundary. Parentheses inside strings, and '(' at depth
// above 0, are literal field content. An empty tuple "()" yields zero fields.
func TokenizeTuples(values string) ([][]string, error) {
	var (
		tuples   [][]string
		current  []string
		field    strings.Builder
		depth    int
		inString bool
		quote    rune
		escaped  bool
		hasField bool
	)

	for _, ch := range values {
		if escaped {
			field.WriteRune(ch)
			escaped = false
			continue
		}

		if inString {
			switch ch {
			case '\\':
				field.WriteRune(ch)
				escaped = true
			case quote:
				field.WriteRune(ch)
				inString = false
			default:
				field.WriteRune(ch)
			}
			continue
		}

		switch {
		case ch == '\'' || ch == '"':
			if depth == 0 {
				return nil, fmt.Errorf("quote outside tuple: %w", apperrors.ErrUnbalancedInput)
			}
			inString = true
			quote = ch
			field.WriteRune(ch)
		case ch == '(':
			if depth == 0 {
				current = nil
				hasField = false
				field.Reset()
			} else {
				field.WriteRune(ch)
				hasField = true
			}
			depth++
		case ch == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unmatched ')': %w", apperrors.ErrUnbalancedInput)
			}
			if depth == 0 {
				if hasField || strings.TrimSpace(field.String()) != "" {
					current = append(current, strings.TrimSpace(field.String()))
				}
				tuples = append(tuples, current)
				current = nil
				field.Reset()
				hasField = false
			} else {
				field.WriteRune(ch)
			}
		case ch == ',':
			switch depth {
			case 0:
				// Separator between tuples.
			case 1:
				current = append(current, strings.TrimSpace(field.String()))
				field.Reset()
				hasField = false
			default:
				field.WriteRune(ch)
			}
		default:
			if depth > 0 {
				field.WriteRune(ch)
				if !isSpace(ch) {
					hasField = true
				}
			}
		}
	}

	if depth != 0 || inString {
		return nil, fmt.Errorf("values list ended mid-tuple: %w", apperrors.ErrUnbalancedInput)
	}
	return tuples, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
