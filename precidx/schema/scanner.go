package schema

// Span is a half-open byte range [Start, End) within the scanned text.
type Span struct {
	Start int
	End   int
}

// BalancedSpan locates the smallest balanced brace span starting at the first
// '{' found at or after from. Nesting depth is tracked only outside string
// literals; both double and single quotes open a string, and a backslash
// suppresses the
// lexical role of the following character. Returns ok=false when no balanced
// span closes before end of input.
func BalancedSpan(text string, from int) (Span, bool) {
	return balancedSpan(text, from, '{', '}')
}

// BalancedBracketSpan is BalancedSpan for '[' / ']' pairs.
func BalancedBracketSpan(text string, from int) (Span, bool) {
	return balancedSpan(text, from, '[', ']')
}

func balancedSpan(text string, from int, open, close byte) (Span, bool) {
	if from < 0 {
		from = 0
	}
	start := -1
	for i := from; i < len(text); i++ {
		if text[i] == open {
			start = i
			break
		}
	}
	if start == -1 {
		return Span{}, false
	}

	depth := 0
	var quote byte // 0 when outside a string
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}

		switch {
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0:
			if c == open {
				depth++
			} else if c == close {
				depth--
				if depth == 0 {
					return Span{Start: start, End: i + 1}, true
				}
			}
		}
	}

	return Span{}, false
}

// ExtractBraced returns the balanced brace substring starting at or after
// from, including the outer braces.
func ExtractBraced(text string, from int) (string, bool) {
	span, ok := BalancedSpan(text, from)
	if !ok {
		return "", false
	}
	return text[span.Start:span.End], true
}
