package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/linecut/internal/host"
	"github.com/sokinpui/linecut/internal/matcher"
	"github.com/sokinpui/linecut/model"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDeleteLines(t *testing.T) {
	path := writeTemp(t, "foo\r\nbar\r\nfoobar\r\nbaz\r\n")
	e, err := NewFileEditor(path)
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := e.ActiveDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.EOLCRLF, doc.EOL())

	res, err := matcher.Match(doc, "foo", true)
	require.NoError(t, err)
	assert.Equal(t, "foo\r\nfoobar\r\n", res.Text)

	require.NoError(t, e.DeleteLines(ctx, doc, res.Spans))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bar\r\nbaz\r\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDeleteLinesPreservesUnmatchedLineEndings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"lf tail in crlf file", "drop\r\nkeep1\r\nkeep2\n", "keep1\r\nkeep2\n"},
		{"crlf line in lf file", "drop\nraw\r\nkeep\nkeep\n", "raw\r\nkeep\nkeep\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.content)
			e, err := NewFileEditor(path)
			require.NoError(t, err)
			ctx := context.Background()

			doc, err := e.ActiveDocument(ctx)
			require.NoError(t, err)
			res, err := matcher.Match(doc, "^drop$", true)
			require.NoError(t, err)
			require.Equal(t, []int{0}, res.Lines())

			require.NoError(t, e.DeleteLines(ctx, doc, res.Spans))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestDeleteLinesStale(t *testing.T) {
	path := writeTemp(t, "foo\nbar\n")
	e, err := NewFileEditor(path)
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := e.ActiveDocument(ctx)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("changed\nfoo\nbar\n"), 0600))

	err = e.DeleteLines(ctx, doc, []model.LineSpan{{Line: 0}})
	assert.ErrorIs(t, err, host.ErrStaleDocument)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "changed\nfoo\nbar\n", string(data))
}

func TestActiveDocumentMissing(t *testing.T) {
	e, err := NewFileEditor(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)

	_, err = e.ActiveDocument(context.Background())
	assert.ErrorIs(t, err, host.ErrNoDocument)
}

func TestOpenDocument(t *testing.T) {
	path := writeTemp(t, "x\n")
	e, err := NewFileEditor(path)
	require.NoError(t, err)

	title := "Untitled - 14:07:09 Tue Mar 05 2024"
	require.NoError(t, e.OpenDocument(context.Background(), title, "foo\nfoobar\n"))

	created := filepath.Join(filepath.Dir(path), "Untitled_14-07-09_Tue_Mar_05_2024.txt")
	data, err := os.ReadFile(created)
	require.NoError(t, err)
	assert.Equal(t, "foo\nfoobar\n", string(data))

	assert.Error(t, e.OpenDocument(context.Background(), title, "again"), "existing files are never overwritten")
}
