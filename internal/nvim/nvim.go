package nvim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/linecut/internal/document"
	"github.com/sokinpui/linecut/internal/fs"
	"github.com/sokinpui/linecut/internal/host"
	"github.com/sokinpui/linecut/internal/matcher"
	"github.com/sokinpui/linecut/internal/ui"
	"github.com/sokinpui/linecut/model"
)

const writeBufferLua = `local buf = ...
vim.api.nvim_buf_call(buf, function() vim.cmd("write") end)`

// deleteRunsLua checks the tick and deletes inside one request, so no other
// client can edit the buffer in between.
const deleteRunsLua = `local buf, tick, runs = ...
if vim.api.nvim_buf_get_changedtick(buf) ~= tick then
  return false
end
for _, run in ipairs(runs) do
  vim.api.nvim_buf_set_lines(buf, run[1], run[2], true, {})
end
return true`

// Manager handles the connection and interaction with a Neovim instance.
type Manager struct {
	nvim          *nvim.Nvim
	isSelfStarted bool
	cmd           *exec.Cmd
	socketPath    string

	// write saves the buffer after every edit.
	write bool
	// file is the path loaded into a self-started instance.
	file string
}

// ServerAddress returns the address of the Neovim instance this process was
// started from, if any.
func ServerAddress() string {
	if addr := os.Getenv("NVIM"); addr != "" {
		return addr
	}
	return os.Getenv("NVIM_LISTEN_ADDRESS")
}

// New connects to the Neovim instance at addr. When addr is empty and file is
// set, a temporary headless instance is started with file loaded; its buffer
// is always written back since the instance does not outlive the process.
func New(addr, file string, write bool) (*Manager, error) {
	if addr != "" {
		v, err := nvim.Dial(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
		}
		m := &Manager{nvim: v, write: write}
		if file != "" {
			if err := m.edit(file); err != nil {
				m.Close()
				return nil, err
			}
		}
		return m, nil
	}
	if file == "" {
		return nil, fmt.Errorf("no running nvim found: set NVIM_LISTEN_ADDRESS, pass --server or --file")
	}

	tmpDir, err := os.MkdirTemp("", "linecut-nvim-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for nvim: %w", err)
	}
	socketPath := filepath.Join(tmpDir, "nvim.sock")

	cmd := exec.Command("nvim", "--headless", "--clean", "--listen", socketPath)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to start headless nvim: %w. Is 'nvim' in your PATH?", err)
	}

	// Wait for the socket file to appear.
	for i := 0; i < 20; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	v, err := nvim.Dial(socketPath)
	if err != nil {
		cmd.Process.Kill()
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to connect to headless nvim: %w", err)
	}

	m := &Manager{
		nvim:          v,
		isSelfStarted: true,
		cmd:           cmd,
		socketPath:    socketPath,
		write:         true,
		file:          file,
	}
	m.configureTempInstance()
	if err := m.edit(file); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// NewWithClient wraps an existing client connection.
func NewWithClient(v *nvim.Nvim, write bool) *Manager {
	return &Manager{nvim: v, write: write}
}

// configureTempInstance keeps the throwaway instance from leaving swap files.
func (m *Manager) configureTempInstance() {
	b := m.nvim.NewBatch()
	b.Command("set noswapfile")
	b.Command("set shortmess+=F")
	if err := b.Execute(); err != nil {
		ui.Debug("configure headless nvim: %v", err)
	}
}

func (m *Manager) edit(file string) error {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	if err := m.nvim.Command("edit " + fnameEscape(absPath)); err != nil {
		return fmt.Errorf("failed to open %s in nvim: %w", absPath, err)
	}
	return nil
}

// Close disconnects from Neovim and cleans up if it was self-started.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
	if m.isSelfStarted && m.cmd != nil && m.cmd.Process != nil {
		if err := m.cmd.Process.Kill(); err == nil {
			m.cmd.Wait()
			os.RemoveAll(filepath.Dir(m.socketPath))
		}
	}
}

// Buffer is a snapshot of a Neovim buffer taken for matching.
type Buffer struct {
	*document.Document
	handle nvim.Buffer
	tick   int
}

func (m *Manager) ActiveDocument(ctx context.Context) (matcher.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, err := m.nvim.CurrentBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", host.ErrNoDocument, err)
	}

	var (
		lines [][]byte
		ff    string
		tick  int
	)
	b := m.nvim.NewBatch()
	b.BufferLines(buf, 0, -1, true, &lines)
	b.BufferOption(buf, "fileformat", &ff)
	b.BufferVar(buf, "changedtick", &tick)
	if err := b.Execute(); err != nil {
		return nil, fmt.Errorf("failed to read buffer %d: %w", buf, err)
	}

	text := make([]string, len(lines))
	for i, l := range lines {
		text[i] = string(l)
	}
	ui.Debug("read buffer %d: %d lines, fileformat=%s, changedtick=%d", buf, len(text), ff, tick)

	return &Buffer{
		Document: document.New(text, model.ParseFileFormat(ff)),
		handle:   buf,
		tick:     tick,
	}, nil
}

// DeleteLines removes the spans in a single atomic call, last run first so
// earlier indexes stay valid. The call is refused if the buffer changed
// since it was read.
func (m *Manager) DeleteLines(ctx context.Context, doc matcher.Document, spans []model.LineSpan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf, ok := doc.(*Buffer)
	if !ok {
		return fmt.Errorf("document was not read from nvim")
	}

	runs := [][]int{}
	for _, run := range document.Runs(spans) {
		runs = append(runs, []int{run[0], run[1]})
	}

	var applied bool
	if err := m.nvim.ExecLua(deleteRunsLua, &applied, int(buf.handle), buf.tick, runs); err != nil {
		return fmt.Errorf("failed to delete lines: %w", err)
	}
	if !applied {
		return fmt.Errorf("%w: buffer %d", host.ErrStaleDocument, buf.handle)
	}
	if err := buf.Document.DeleteLines(spans); err != nil {
		return err
	}

	if m.write {
		return m.save(buf.handle)
	}
	return nil
}

// OpenDocument creates a listed buffer named title, shows it in the current
// window and fills it with text.
func (m *Manager) OpenDocument(ctx context.Context, title, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf, err := m.nvim.CreateBuffer(true, false)
	if err != nil {
		return fmt.Errorf("failed to create buffer: %w", err)
	}

	content := document.Parse(text)
	replacement := make([][]byte, content.LineCount())
	for i := range replacement {
		replacement[i] = []byte(content.LineAt(i))
	}

	b := m.nvim.NewBatch()
	b.SetBufferName(buf, title)
	b.SetBufferLines(buf, 0, 0, true, replacement)
	b.SetBufferOption(buf, "fileformat", fileFormat(content.EOL()))
	b.SetCurrentBuffer(buf)
	if m.isSelfStarted {
		// The headless instance goes away with us; persist the buffer next to the edited file.
		path := filepath.Join(filepath.Dir(m.file), fs.FileName(title))
		b.Command("write " + fnameEscape(path))
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to fill new buffer: %w", err)
	}
	return nil
}

func (m *Manager) save(buf nvim.Buffer) error {
	if name, err := m.nvim.BufferName(buf); err == nil && name == "" {
		return fmt.Errorf("buffer %d has no file name to write", buf)
	}
	if err := m.nvim.ExecLua(writeBufferLua, nil, int(buf)); err != nil {
		return fmt.Errorf("failed to write buffer %d: %w", buf, err)
	}
	return nil
}

func fileFormat(eol model.EOL) string {
	if eol == model.EOLCRLF {
		return "dos"
	}
	return "unix"
}

func fnameEscape(path string) string {
	out := make([]rune, 0, len(path))
	for _, r := range path {
		switch r {
		case ' ', '\\', '%', '#', '|', '"':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
