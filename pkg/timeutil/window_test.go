package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowFallback(t *testing.T) {
	d, err := ParseWindow("", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)
}

func TestParseWindowComposite(t *testing.T) {
	d, err := ParseWindow("1w2d6h30m", 0)
	require.NoError(t, err)
	assert.Equal(t, (7*24+2*24+6)*time.Hour+30*time.Minute, d)
	assert.Equal(t, "1w2d6h30m", FormatWindow(d))
}

func TestParseWindowGoDuration(t *testing.T) {
	d, err := ParseWindow("1m30s", 0)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3 fortnights", "0m"} {
		_, err := ParseWindow(in, 0)
		assert.Error(t, err, in)
	}
}
