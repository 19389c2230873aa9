package schema

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Options carries the policy knobs of the parsing pipeline.
type Options struct {
	// PreserveCombinatorCase keeps the source casing of anyOf/oneOf/allOf
	// keys instead of normalizing it.
	PreserveCombinatorCase bool
}

// Parse turns a raw Parameters/Output text span into a schema mapping using a
// fixed strategy chain:
//
//  1. normalize punctuation and literals, apply structural repairs, then a
//     strict JSON parse;
//  2. run the raw text through jsonrepair and parse strictly, which covers
//     pure Python-dict-literal input the normalizer never touched;
//  3. minimal substitution (None→null, single→double quotes) plus a strict
//     parse.
//
// The first strategy yielding a non-empty mapping wins. An empty mapping is
// treated as a likely silent failure and falls through, but is returned as a
// last resort when every strategy produced either nil or {}. A nil result
// means total parse failure.
func Parse(raw string, opts Options) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	sawEmpty := false

	try := func(text string) map[string]any {
		var m map[string]any
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			return nil
		}
		if m == nil {
			return nil
		}
		if len(m) == 0 {
			sawEmpty = true
			return nil
		}
		return m
	}

	// Strategy 1: normalize + repair + strict parse.
	prepared := FixPunctuation(raw)
	prepared = Repair(prepared, opts.PreserveCombinatorCase)
	prepared = QuoteBareKeys(prepared)
	prepared = RequoteStrings(prepared)
	prepared = ReplacePythonLiterals(prepared)
	prepared = StripTrailingCommas(prepared)
	prepared = QuoteEnumValues(prepared)
	if m := try(prepared); m != nil {
		return m
	}

	// Strategy 2: general-purpose repair of the untouched input.
	if repaired, err := jsonrepair.JSONRepair(raw); err == nil {
		if m := try(repaired); m != nil {
			return m
		}
	}

	// Strategy 3: minimal substitution.
	simple := strings.ReplaceAll(raw, "None", "null")
	simple = strings.ReplaceAll(simple, "'", `"`)
	if m := try(simple); m != nil {
		return m
	}

	if sawEmpty {
		return map[string]any{}
	}
	return nil
}
