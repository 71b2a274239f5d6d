package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRoot executes the root command with args and returns stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "reqkey", cmd.Use)
	assert.Contains(t, cmd.Long, "REQKEY_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"kinds", "hash", "render", "exec"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dialectFlag := cmd.PersistentFlags().Lookup("dialect")
	require.NotNil(t, dialectFlag)
	assert.Equal(t, "sqlite", dialectFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := runRoot(t, "kinds", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidDialect(t *testing.T) {
	_, err := runRoot(t, "kinds", "--dialect", "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")
}

func TestEnvironmentOverridesDefault(t *testing.T) {
	t.Setenv("REQKEY_FORMAT", "json")

	out, err := runRoot(t, "kinds")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("REQKEY_FORMAT", "json")

	out, err := runRoot(t, "kinds", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqkey.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\ndialect: postgres\n"), 0o644))

	out, err := runRoot(t, "kinds", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)

	_, err = runRoot(t, "kinds", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
