package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noConfig(t *testing.T) string {
	return "--config=" + filepath.Join(t.TempDir(), "missing.yaml")
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"cut-lines", noConfig(t)})
	require.NoError(t, err)

	assert.Equal(t, "cut-lines", cfg.Command)
	assert.Equal(t, BackendNvim, cfg.Backend)
	assert.Equal(t, PromptTUI, cfg.Prompt)
	assert.Equal(t, ClipboardSystem, cfg.Clipboard)
	assert.Equal(t, "+", cfg.Register)
	assert.False(t, cfg.HasPattern)
	assert.False(t, cfg.CaseSensitive)
}

func TestParseArgsPattern(t *testing.T) {
	cfg, err := ParseArgs([]string{"copy-lines", "-p", "", "-c", noConfig(t)})
	require.NoError(t, err)

	assert.True(t, cfg.HasPattern, "an explicitly empty pattern still skips the prompt")
	assert.Equal(t, "", cfg.Pattern)
	assert.True(t, cfg.CaseSensitive)
}

func TestParseArgsErrors(t *testing.T) {
	tests := map[string][]string{
		"no command":        {},
		"two commands":      {"cut-lines", "copy-lines"},
		"bad backend":       {"cut-lines", "--backend=emacs"},
		"file without path": {"cut-lines", "--backend=file"},
		"file with nvim ui": {"cut-lines", "--backend=file", "-f", "x.txt", "--prompt=nvim"},
		"long register":     {"cut-lines", "--register=ab"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseArgs(append(args, noConfig(t)))
			assert.Error(t, err)
		})
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "case_sensitive: true\nclipboard: nvim\nregister: a\nwrite: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := ParseArgs([]string{"delete-lines", "--config", path, "--register", "b"})
	require.NoError(t, err)

	assert.True(t, cfg.CaseSensitive)
	assert.Equal(t, ClipboardNvim, cfg.Clipboard)
	assert.Equal(t, "b", cfg.Register, "flags win over the file")
	assert.True(t, cfg.Write)
}

func TestConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("write: [\n"), 0644))

	_, err := ParseArgs([]string{"delete-lines", "--config", path})
	assert.Error(t, err)
}
