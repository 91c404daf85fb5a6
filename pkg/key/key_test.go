package key

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, (&Key{Out: &buf}).Do(context.Background()))
	assert.Contains(t, buf.String(), "Meaning")
	assert.Contains(t, buf.String(), "overdue, carried over")
}
