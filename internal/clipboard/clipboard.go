package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// System reads and writes the operating system clipboard.
type System struct{}

// New creates a System clipboard. It fails early when no clipboard utility
// is available (e.g. xclip/xsel/wl-copy on Linux).
func New() (*System, error) {
	if clipboard.Unsupported {
		return nil, fmt.Errorf("system clipboard is not supported on this platform")
	}
	return &System{}, nil
}

func (s *System) ReadAll() (string, error) {
	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	return content, nil
}

func (s *System) WriteAll(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}
