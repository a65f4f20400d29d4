package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sokinpui/linecut/internal/document"
	"github.com/sokinpui/linecut/internal/host"
	"github.com/sokinpui/linecut/internal/matcher"
	"github.com/sokinpui/linecut/internal/ui"
	"github.com/sokinpui/linecut/model"
)

// FileEditor treats a file on disk as the active document.
type FileEditor struct {
	path   string
	outDir string
}

// snapshot remembers the content hash a document was read with.
type snapshot struct {
	*document.Document
	hash string
}

// NewFileEditor creates an editor for path. New documents are written next to it.
func NewFileEditor(path string) (*FileEditor, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", path, err)
	}
	return &FileEditor{path: absPath, outDir: filepath.Dir(absPath)}, nil
}

// Path returns the absolute path of the edited file.
func (e *FileEditor) Path() string {
	return e.path
}

func (e *FileEditor) ActiveDocument(ctx context.Context) (matcher.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", host.ErrNoDocument, e.path)
		}
		return nil, err
	}
	ui.Debug("read %s (%d bytes)", e.path, len(data))
	return &snapshot{Document: document.Parse(string(data)), hash: sum(data)}, nil
}

func (e *FileEditor) DeleteLines(ctx context.Context, doc matcher.Document, spans []model.LineSpan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap, ok := doc.(*snapshot)
	if !ok {
		return fmt.Errorf("document was not read from %s", e.path)
	}

	current, err := os.ReadFile(e.path)
	if err != nil {
		return err
	}
	if sum(current) != snap.hash {
		return fmt.Errorf("%w: %s", host.ErrStaleDocument, e.path)
	}

	if err := snap.DeleteLines(spans); err != nil {
		return err
	}
	snap.hash = sum([]byte(snap.String()))
	return WriteFileAtomic(e.path, []byte(snap.String()))
}

func (e *FileEditor) OpenDocument(ctx context.Context, title, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(e.outDir, FileName(title))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %s", path)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return err
	}
	ui.Info("New document: %s", path)
	return nil
}

// FileName turns a document title into a portable file name.
func FileName(title string) string {
	r := strings.NewReplacer(":", "-", "/", "-", "\\", "-", " - ", "_", " ", "_")
	return r.Replace(title) + ".txt"
}

// WriteFileAtomic replaces path with data through a temporary sibling file,
// keeping the original permissions.
func WriteFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".linecut-*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
