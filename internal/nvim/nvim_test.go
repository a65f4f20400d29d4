package nvim

import (
	"context"
	"os/exec"
	"testing"

	"github.com/neovim/go-client/nvim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/linecut/internal/host"
	"github.com/sokinpui/linecut/internal/matcher"
	"github.com/sokinpui/linecut/model"
)

func TestParseCaseFlag(t *testing.T) {
	tests := []struct {
		input   string
		def     bool
		pattern string
		cs      bool
	}{
		{`foo`, false, `foo`, false},
		{`foo`, true, `foo`, true},
		{`\Cfoo`, false, `foo`, true},
		{`\cfoo`, true, `foo`, false},
		{`a\Cb`, false, `a\Cb`, false},
	}
	for _, tt := range tests {
		pattern, cs := ParseCaseFlag(tt.input, tt.def)
		assert.Equal(t, tt.pattern, pattern, tt.input)
		assert.Equal(t, tt.cs, cs, tt.input)
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "Match case", CaseHint(true))
	assert.Equal(t, "Ignore case", CaseHint(false))
	assert.Equal(t, "dos", fileFormat(model.EOLCRLF))
	assert.Equal(t, "unix", fileFormat(model.EOLLF))
	assert.Equal(t, `/tmp/a\ b\%.txt`, fnameEscape("/tmp/a b%.txt"))
}

// newEmbedded starts a clean embedded nvim, skipping when nvim is not installed.
func newEmbedded(t *testing.T) *Manager {
	t.Helper()
	if _, err := exec.LookPath("nvim"); err != nil {
		t.Skip("nvim not found in PATH")
	}
	v, err := nvim.NewChildProcess(nvim.ChildProcessArgs("-u", "NONE", "-n", "--embed", "--headless"))
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	return NewWithClient(v, false)
}

func setLines(t *testing.T, m *Manager, lines ...string) {
	t.Helper()
	buf, err := m.nvim.CurrentBuffer()
	require.NoError(t, err)
	replacement := make([][]byte, len(lines))
	for i, l := range lines {
		replacement[i] = []byte(l)
	}
	require.NoError(t, m.nvim.SetBufferLines(buf, 0, -1, true, replacement))
}

func currentLines(t *testing.T, m *Manager) []string {
	t.Helper()
	buf, err := m.nvim.CurrentBuffer()
	require.NoError(t, err)
	raw, err := m.nvim.BufferLines(buf, 0, -1, true)
	require.NoError(t, err)
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(l)
	}
	return lines
}

func TestDeleteLinesEmbedded(t *testing.T) {
	m := newEmbedded(t)
	ctx := context.Background()
	setLines(t, m, "foo", "bar", "foobar", "baz", "foo again")

	doc, err := m.ActiveDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.EOLLF, doc.EOL())

	res, err := matcher.Match(doc, "foo", false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, res.Lines())

	require.NoError(t, m.DeleteLines(ctx, doc, res.Spans))
	assert.Equal(t, []string{"bar", "baz"}, currentLines(t, m))
}

func TestDeleteLinesStaleEmbedded(t *testing.T) {
	m := newEmbedded(t)
	ctx := context.Background()
	setLines(t, m, "foo", "bar")

	doc, err := m.ActiveDocument(ctx)
	require.NoError(t, err)
	setLines(t, m, "changed", "foo", "bar")

	err = m.DeleteLines(ctx, doc, []model.LineSpan{{Line: 0}})
	assert.ErrorIs(t, err, host.ErrStaleDocument)
	assert.Equal(t, []string{"changed", "foo", "bar"}, currentLines(t, m))
}

func TestDeleteRunsChecksTickInSameCall(t *testing.T) {
	m := newEmbedded(t)
	setLines(t, m, "foo", "bar", "foobar", "baz")

	buf, err := m.nvim.CurrentBuffer()
	require.NoError(t, err)
	var tick int
	require.NoError(t, m.nvim.BufferVar(buf, "changedtick", &tick))
	runs := [][]int{{2, 3}, {0, 1}}

	var applied bool
	require.NoError(t, m.nvim.ExecLua(deleteRunsLua, &applied, int(buf), tick+1, runs))
	assert.False(t, applied)
	assert.Equal(t, []string{"foo", "bar", "foobar", "baz"}, currentLines(t, m))

	require.NoError(t, m.nvim.ExecLua(deleteRunsLua, &applied, int(buf), tick, runs))
	assert.True(t, applied)
	assert.Equal(t, []string{"bar", "baz"}, currentLines(t, m))
}

func TestOpenDocumentEmbedded(t *testing.T) {
	m := newEmbedded(t)

	require.NoError(t, m.OpenDocument(context.Background(), "Untitled - 14:07:09 Tue Mar 05 2024", "foo\nfoobar\n"))

	assert.Equal(t, []string{"foo", "foobar", ""}, currentLines(t, m))
	buf, err := m.nvim.CurrentBuffer()
	require.NoError(t, err)
	name, err := m.nvim.BufferName(buf)
	require.NoError(t, err)
	assert.Contains(t, name, "Untitled - 14:07:09 Tue Mar 05 2024")
}

func TestRegisterEmbedded(t *testing.T) {
	m := newEmbedded(t)
	reg := m.Register("a")

	require.NoError(t, reg.WriteAll("foo\nfoobar\n"))
	text, err := reg.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "foo\nfoobar\n", text)
}
