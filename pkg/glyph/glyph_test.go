package glyph

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMarks(t *testing.T) {
	assert.Equal(t, "✓", Done.String())
	assert.Equal(t, "·", Open.String())
	assert.Equal(t, "urgent, ignores quiet hours", Urgent.Glyph().Meaning)
	assert.Len(t, strings.Split(strings.TrimSpace(Legend()), "\n"), len(DefaultGlyphs()))
}

func TestStrike(t *testing.T) {
	old := color.NoColor
	defer func() { color.NoColor = old }()

	color.NoColor = true
	assert.Equal(t, "pay rent", Strike("pay rent"))

	color.NoColor = false
	assert.Equal(t, "\x1b[9mpay rent\x1b[0m", Strike("pay rent"))
}
