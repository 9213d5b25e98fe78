package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("IDHUE_CONFIG", "")

	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "LANGUAGE")
	assert.Contains(t, out, "go")
	assert.Contains(t, out, ".go")
	assert.Contains(t, out, "(undecorated)")
	assert.NotContains(t, out, "invalid")
}

func TestRulesCommandVerbose(t *testing.T) {
	out, err := execute(t, "rules", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "identifier")
	assert.Contains(t, out, "exclude")
}

func TestRulesCommandInvalidRule(t *testing.T) {
	cfg := writeFile(t, "idhue.toml", `
[languages.broken]
extensions = [".brk"]
identifier = "[a-z"
tags = [""]
`)
	out, err := execute(t, "--config", cfg, "rules")
	if err != nil {
		// Validation may reject the file outright.
		assert.Contains(t, err.Error(), "broken")
		return
	}
	assert.Contains(t, out, "invalid")
}

func TestPaletteCommand(t *testing.T) {
	out, err := execute(t, "palette", "--palette-size", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "3 colors"))
	for i, l := range lines[1:] {
		assert.Contains(t, l, "#", "line %d", i+1)
		assert.Contains(t, l, "L=", "line %d", i+1)
	}
}

func TestPaletteCommandBadForeground(t *testing.T) {
	_, err := execute(t, "palette", "--foreground", "nope")
	assert.Error(t, err)
}

func TestRenderCommandPlain(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tx := 1\n\t_ = x\n}\n"
	path := writeFile(t, "main.go", src)

	out, err := execute(t, "render", path)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestRenderCommandForcedColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	path := writeFile(t, "main.go", "package main\n\nvar alpha = beta\n")

	out, err := execute(t, "render", path)
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "alpha")
}

func TestRenderCommandMissingFile(t *testing.T) {
	_, err := execute(t, "render", filepath.Join(t.TempDir(), "absent.go"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.go")
}

func TestRenderCommandUnknownLanguage(t *testing.T) {
	path := writeFile(t, "notes.txt", "plain words here\n")

	out, err := execute(t, "render", path)
	require.NoError(t, err)
	assert.Equal(t, "plain words here\n", out)
}

func TestUnknownFlagOverride(t *testing.T) {
	_, err := execute(t, "--palette-size", "-1", "palette")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "--palette-size", "3", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "[palette]")
	assert.Contains(t, out, "size = 3")
	assert.Contains(t, out, "[languages.go]")

	out, err = execute(t, "config", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "palette:")
	assert.Contains(t, out, "languages:")

	_, err = execute(t, "config", "--format", "ini")
	assert.Error(t, err)
}
