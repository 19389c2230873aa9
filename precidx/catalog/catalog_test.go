package catalog

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestClosestPrefix(t *testing.T) {
	cat := buildSample(t)

	assert.Equal(t, "get_interface_status", cat.Suggest("get_interface_state"))
	assert.Equal(t, "ping_host", cat.Suggest("ping_hosts"))
	assert.Equal(t, "", cat.Suggest("reboot_device"))
}

func TestSuggestNeverReturnsSelf(t *testing.T) {
	cat := buildSample(t)
	got := cat.Suggest("ping_host")
	assert.NotEqual(t, "ping_host", got)
}

func TestHasAndLookup(t *testing.T) {
	cat := buildSample(t)

	assert.True(t, cat.Has("ping_host"))
	assert.False(t, cat.Has("unknown"))

	_, ok := cat.Lookup("unknown")
	assert.False(t, ok)
}

func TestRenderNormalizedRoundTrips(t *testing.T) {
	cat := buildSample(t)
	text := RenderNormalized(cat)

	// The normalized text is itself a valid catalog specification.
	again, err := Build(text, BuildOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, cat.Names(), again.Names())

	spec, ok := again.Lookup("get_interface_status")
	require.True(t, ok)
	assert.Equal(t, "object", spec.OutputSchema["type"])
}

func TestRenderNormalizedNilSchema(t *testing.T) {
	text := `1. Name: broken_tool
Description: Unparseable everywhere.
Parameters: {<<>>
`
	cat, err := Build(text, BuildOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)

	out := RenderNormalized(cat)
	assert.True(t, strings.Contains(out, "Parameters: {}"))
	assert.True(t, strings.Contains(out, "Output: {}"))
}
