package commands

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/daybook/pkg/commands/options"
)

func TestNewRegistersVerbs(t *testing.T) {
	root := New()
	for _, verb := range []string{
		"agenda", "add", "done", "checkin", "streak", "remind", "refresh",
		"report", "settings", "info", "key", "mcp", "version", "completion", "upgrade",
	} {
		cmd, _, err := root.Find([]string{verb})
		require.NoError(t, err, verb)
		assert.Equal(t, verb, cmd.Name())
	}

	for _, sub := range []string{"task", "habit", "reminder"} {
		cmd, _, err := root.Find([]string{"add", sub})
		require.NoError(t, err, sub)
		assert.Equal(t, sub, cmd.Name())
	}

	cmd, _, err := root.Find([]string{"today"})
	require.NoError(t, err)
	assert.Equal(t, "agenda", cmd.Name())
}

func TestSettingsInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.toml")
	t.Cleanup(func() { *gopts = globalOptions{}; *oo = options.OutputOptions{} })

	root := New()
	root.SetArgs([]string{"settings", "init", "--config", path})
	require.NoError(t, root.Execute())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "endpoint")

	root = New()
	root.SetArgs([]string{"settings", "init", "--config", path})
	assert.Error(t, root.Execute(), "existing file needs --force")

	root = New()
	root.SetArgs([]string{"settings", "init", "--config", path, "--force"})
	assert.NoError(t, root.Execute())
}

func TestCheckInNeedsHabitOrAll(t *testing.T) {
	t.Cleanup(func() { *gopts = globalOptions{} })
	root := New()
	root.SetArgs([]string{"checkin", "--config", filepath.Join(t.TempDir(), "none.toml")})
	assert.Error(t, root.Execute())
}

func TestMCPOptions(t *testing.T) {
	mo := &mcpOptions{Host: "0.0.0.0", Port: 8080, Path: "daybook"}
	assert.Equal(t, "/daybook", mo.endpointPath())

	addr, err := mo.listenAddr()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", addr)

	bound := &net.TCPAddr{IP: net.IPv4zero, Port: 43210}
	assert.Equal(t, "http://127.0.0.1:43210/daybook", mo.displayURL(bound))

	mo = &mcpOptions{Host: "::1", TLSCert: "c.pem", TLSKey: "k.pem"}
	assert.Equal(t, "https://[::1]:9000/mcp", mo.displayURL(&net.TCPAddr{IP: net.IPv6loopback, Port: 9000}))

	_, err = (&mcpOptions{Port: 70000}).listenAddr()
	assert.Error(t, err)
}
