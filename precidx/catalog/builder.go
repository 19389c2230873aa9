package catalog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/precidx/precidx/precidx/schema"
)

var (
	headerRe  = regexp.MustCompile(`(?m)^\s*\d+\.\s+Name:`)
	ordinalRe = regexp.MustCompile(`^\s*(\d+)\.\s+Name:`)
	nameRe    = regexp.MustCompile(`Name:\s*(\w+)`)
)

const (
	labelParameters  = "Parameters:"
	labelOutput      = "Output:"
	labelDescription = "Description:"
)

// BuildOptions configures a catalog build.
type BuildOptions struct {
	Parser schema.Options
	Logger zerolog.Logger
}

// Build splits raw tool-specification text into per-tool blocks and drives
// schema extraction for each. Blocks whose name cannot be extracted are
// dropped with a diagnostic; the build only fails on entirely empty input.
func Build(content string, opts BuildOptions) (*Catalog, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("catalog: empty specification text")
	}

	cat := newCatalog()

	for _, block := range splitBlocks(content) {
		spec, ok := buildTool(block, opts)
		if !ok {
			continue
		}
		cat.add(spec)
	}

	if cat.Len() == 0 {
		return nil, errors.New("catalog: no tool blocks found")
	}
	return cat, nil
}

// splitBlocks cuts the text at every "N. Name:" header line.
func splitBlocks(content string) []string {
	locs := headerRe.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	var blocks []string
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := strings.TrimSpace(content[loc[0]:end])
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func buildTool(block string, opts BuildOptions) (*ToolSpec, bool) {
	ordinal := 0
	if m := ordinalRe.FindStringSubmatch(block); m != nil {
		ordinal, _ = strconv.Atoi(m[1])
	}

	nameMatch := nameRe.FindStringSubmatch(block)
	if nameMatch == nil {
		opts.Logger.Warn().Int("ordinal", ordinal).Msg("tool block has no extractable name, dropping")
		return nil, false
	}
	name := nameMatch[1]

	spec := &ToolSpec{
		Ordinal:     ordinal,
		Name:        name,
		Description: extractDescription(block),
	}

	spec.InputSchema = extractSchema(block, labelParameters, name, opts, spec)
	spec.OutputSchema = schema.CompleteOutputSchema(
		extractSchema(block, labelOutput, name, opts, spec))

	collectQuality(spec)
	return spec, true
}

// extractDescription takes everything between "Description:" and the next
// Parameters/Output label (or end of block), collapsing whitespace.
func extractDescription(block string) string {
	start := strings.Index(block, labelDescription)
	if start == -1 {
		return ""
	}
	rest := block[start+len(labelDescription):]

	end := len(rest)
	for _, label := range []string{"\n" + labelParameters, "\n" + labelOutput} {
		if at := strings.Index(rest, label); at != -1 && at < end {
			end = at
		}
	}
	return strings.Join(strings.Fields(rest[:end]), " ")
}

// extractSchema carves the brace-balanced span following a label and parses
// it. A missing span or failed parse yields nil plus a recorded warning.
func extractSchema(block, label, toolName string, opts BuildOptions, spec *ToolSpec) map[string]any {
	pos := strings.Index(block, label)
	if pos == -1 {
		return nil
	}

	raw, ok := schema.ExtractBraced(block, pos)
	if !ok {
		spec.Warnings = append(spec.Warnings, label+" has no balanced brace span")
		opts.Logger.Warn().Str("tool", toolName).Str("label", label).Msg("no balanced brace span found")
		return nil
	}

	parsed := schema.Parse(raw, opts.Parser)
	if parsed == nil {
		spec.Warnings = append(spec.Warnings, label+" failed to parse with every strategy")
		opts.Logger.Warn().Str("tool", toolName).Str("label", label).Msg("schema parse failed")
	}
	return parsed
}

func collectQuality(spec *ToolSpec) {
	if schema.IsPlaceholderDescription(spec.Description) {
		spec.Warnings = append(spec.Warnings, "Description is empty or a placeholder")
	}
	if spec.InputSchema == nil {
		spec.Warnings = append(spec.Warnings, "Parameters is empty")
	} else {
		spec.Warnings = append(spec.Warnings, schema.CheckQuality(spec.InputSchema, schema.KindParameters)...)
	}
	if spec.OutputSchema == nil {
		spec.Warnings = append(spec.Warnings, "Output is empty")
	} else {
		spec.Warnings = append(spec.Warnings, schema.CheckQuality(spec.OutputSchema, schema.KindOutput)...)
	}
}
