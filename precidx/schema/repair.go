package schema

import (
	"regexp"
	"strings"
)

// The repair pass targets two malformed nesting patterns that show up in
// hand-written tool specs: a "properties" object whose closing brace was
// dropped before a sibling key, and combinator arrays whose members lost
// their own closing braces. Each repair is a strict no-op when its trigger
// pattern is absent.

var (
	propertiesOpenRe = regexp.MustCompile(`["']properties["']\s*:\s*\{`)
	strayBoundaryRe  = regexp.MustCompile(`(["'])\s*,\s*\{`)
	combinatorRe     = regexp.MustCompile(`(?i)["'](anyof|oneof|allof)["']\s*:\s*\[([^\]]+?)(\]|$)`)
	combModifierRes  = []*regexp.Regexp{
		regexp.MustCompile(`,\s*["']default["']\s*:\s*([^,\]}]+)`),
		regexp.MustCompile(`,\s*["']title["']\s*:\s*([^,\]}]+)`),
		regexp.MustCompile(`,\s*["']description["']\s*:\s*([^,\]}]+)`),
	}
)

// siblingKeys are the top-level schema keywords whose appearance at depth 1
// inside a "properties" object signals a missing closing brace.
var siblingKeys = []string{"required", "type", "additionalProperties", "description"}

// RepairProperties inserts the missing closing brace of a "properties" object
// when a top-level sibling key appears before the object has closed. The
// brace is placed directly after the last complete child property. Input
// whose properties object closes cleanly is returned unchanged.
func RepairProperties(s string) string {
	loc := propertiesOpenRe.FindStringIndex(s)
	if loc == nil {
		return s
	}

	// Position of the '{' that opens the properties value.
	start := loc[1] - 1

	depth := 0
	var quote byte
	escaped := false
	lastChildClose := -1

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}

		if quote == 0 && (c == '"' || c == '\'') {
			quote = c
			continue
		}
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				// properties closes cleanly; nothing to repair
				return s
			}
			if depth == 1 {
				lastChildClose = i
			}
		case ',':
			if depth != 1 {
				continue
			}
			rest := strings.TrimLeft(s[i+1:], " \t\r\n")
			for _, key := range siblingKeys {
				if strings.HasPrefix(rest, `"`+key+`"`) || strings.HasPrefix(rest, `'`+key+`'`) {
					if lastChildClose == -1 {
						return s
					}
					at := lastChildClose + 1
					return s[:at] + "}" + s[at:]
				}
			}
		}
	}

	return s
}

// RepairStrayBoundaries fixes the `",{` pattern where a member's closing
// brace was replaced by a comma, turning sibling objects into broken nesting.
func RepairStrayBoundaries(s string) string {
	return strayBoundaryRe.ReplaceAllString(s, "$1},{")
}

// RepairCombinators rewrites malformed anyOf/oneOf/allOf arrays: member
// boundaries are restored, trailing modifier keys (default, title,
// description) are hoisted out to follow the closed array, and the combinator
// key's casing is normalized unless preserveCase is set.
func RepairCombinators(s string, preserveCase bool) string {
	return combinatorRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := combinatorRe.FindStringSubmatch(m)
		key := sub[1]
		content := sub[2]

		// Restore member object boundaries.
		fixed := strayBoundaryRe.ReplaceAllString(content, "$1},{")

		// Hoist modifier key/value pairs trailing the last member out of the
		// array. Modifiers inside a member object are legitimate schema
		// content and stay put.
		var hoisted []string
		tail := strings.LastIndexByte(fixed, '}') + 1
		for _, re := range combModifierRes {
			locs := re.FindAllStringIndex(fixed[tail:], -1)
			if len(locs) == 0 {
				continue
			}
			last := locs[len(locs)-1]
			lo, hi := tail+last[0], tail+last[1]
			hoisted = append(hoisted, fixed[lo:hi])
			fixed = fixed[:lo] + fixed[hi:]
		}

		fixed = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(fixed), ","))

		// Drop surplus closing braces left behind by the hoist.
		opens := strings.Count(fixed, "{")
		closes := strings.Count(fixed, "}")
		for ; closes > opens; closes-- {
			if at := strings.LastIndexByte(fixed, '}'); at != -1 {
				fixed = fixed[:at] + fixed[at+1:]
			}
		}

		outKey := key
		if !preserveCase {
			outKey = CanonicalCombinator(key)
		}

		if fixed == strings.TrimSpace(content) && len(hoisted) == 0 && outKey == key && sub[3] == "]" {
			return m
		}

		result := `"` + outKey + `":[` + fixed + `]`
		if len(hoisted) > 0 {
			result += strings.Join(hoisted, "")
		}
		return result
	})
}

// CanonicalCombinator maps any casing of a combinator keyword to its
// JSON-Schema spelling.
func CanonicalCombinator(key string) string {
	switch strings.ToLower(key) {
	case "anyof":
		return "anyOf"
	case "oneof":
		return "oneOf"
	case "allof":
		return "allOf"
	}
	return key
}

// Repair applies the full structural repair sequence.
func Repair(s string, preserveCase bool) string {
	s = RepairProperties(s)
	s = RepairStrayBoundaries(s)
	s = RepairCombinators(s, preserveCase)
	return s
}
