package schema

import (
	"regexp"
	"strings"
)

// punctReplacer maps full-width punctuation variants, common in hand-written
// tool specs, onto their ASCII equivalents. Must run before any structural
// pass so the repair heuristics only ever see ASCII brackets.
var punctReplacer = strings.NewReplacer(
	"，", ",", // ，
	"：", ":", // ：
	"；", ";", // ；
	"“", "\"", // “
	"”", "\"", // ”
	"‘", "'", // ‘
	"’", "'", // ’
	"（", "(", // （
	"）", ")", // ）
	"【", "[", // 【
	"】", "]", // 】
	"《", "<", // 《
	"》", ">", // 》
)

var (
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	noneRe          = regexp.MustCompile(`\bNone\b`)
	trueRe          = regexp.MustCompile(`\bTrue\b`)
	falseRe         = regexp.MustCompile(`\bFalse\b`)
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
	enumArrayRe     = regexp.MustCompile(`"enum"\s*:\s*\[([^\]]*)\]`)
	bareEnumWordRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)
)

// FixPunctuation rewrites full-width punctuation to ASCII.
func FixPunctuation(s string) string {
	return punctReplacer.Replace(s)
}

// QuoteBareKeys wraps identifiers used as object keys in double quotes. Only
// identifiers directly preceded by '{' or ',' and followed by ':' qualify.
func QuoteBareKeys(s string) string {
	return bareKeyRe.ReplaceAllString(s, `$1"$2":`)
}

// RequoteStrings re-lexes s, converting every single-quoted string into a
// double-quoted one. The scan tracks which quote character opened the current
// string, so an apostrophe inside a double-quoted string (or a '"' inside a
// single-quoted one) is left alone. Escape pairs are copied through verbatim.
func RequoteStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote == 0 {
			switch c {
			case '"':
				quote = '"'
				b.WriteByte(c)
			case '\'':
				quote = '\''
				b.WriteByte('"')
			default:
				b.WriteByte(c)
			}
			continue
		}
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		if c == quote {
			quote = 0
			b.WriteByte('"')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ReplacePythonLiterals converts None/True/False tokens (whole words only)
// to their JSON spellings.
func ReplacePythonLiterals(s string) string {
	s = noneRe.ReplaceAllString(s, "null")
	s = trueRe.ReplaceAllString(s, "true")
	s = falseRe.ReplaceAllString(s, "false")
	return s
}

// StripTrailingCommas removes commas that directly precede ']' or '}'.
func StripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// QuoteEnumValues wraps bare-word members of enum arrays in double quotes.
// Elements that already carry a quote, JSON literals, and numbers are left
// untouched.
func QuoteEnumValues(s string) string {
	return enumArrayRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := enumArrayRe.FindStringSubmatch(m)
		inner := sub[1]
		parts := strings.Split(inner, ",")
		changed := false
		for i, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed == "" {
				continue
			}
			if trimmed[0] == '"' || trimmed[0] == '\'' {
				continue
			}
			switch trimmed {
			case "null", "true", "false":
				continue
			}
			if !bareEnumWordRe.MatchString(trimmed) {
				continue
			}
			parts[i] = `"` + trimmed + `"`
			changed = true
		}
		if !changed {
			return m
		}
		return `"enum": [` + strings.Join(parts, ", ") + `]`
	})
}

// NormalizeText applies the full punctuation-and-literal normalization
// sequence. The pass order is load-bearing: keys must be quoted before the
// string re-lex so the '{' and ',' prefixes are still recognizable.
// NormalizeText is idempotent.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = FixPunctuation(s)
	s = QuoteBareKeys(s)
	s = RequoteStrings(s)
	s = ReplacePythonLiterals(s)
	s = StripTrailingCommas(s)
	s = QuoteEnumValues(s)
	return s
}
