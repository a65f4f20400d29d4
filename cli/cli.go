package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Backends, prompts and clipboards accepted on the command line.
const (
	BackendNvim = "nvim"
	BackendFile = "file"

	PromptTUI  = "tui"
	PromptNvim = "nvim"

	ClipboardSystem = "system"
	ClipboardNvim   = "nvim"
)

// ErrHelp is returned when usage was requested.
var ErrHelp = pflag.ErrHelp

// Config holds all the command-line flag values.
type Config struct {
	Command       string
	Pattern       string
	HasPattern    bool
	CaseSensitive bool
	Backend       string
	File          string
	Server        string
	Prompt        string
	Clipboard     string
	Register      string
	Write         bool
	Verbose       bool
	ConfigPath    string
}

// FileConfig is the YAML defaults file. Unset fields keep the built-in defaults.
type FileConfig struct {
	CaseSensitive *bool  `yaml:"case_sensitive"`
	Backend       string `yaml:"backend"`
	Prompt        string `yaml:"prompt"`
	Clipboard     string `yaml:"clipboard"`
	Register      string `yaml:"register"`
	Write         *bool  `yaml:"write"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/linecut/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "linecut", "config.yaml")
}

// LoadFile reads a defaults file. A missing file is not an error.
func LoadFile(path string) (*FileConfig, error) {
	fc := &FileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return fc, nil
}

// ParseFlags parses os.Args.
func ParseFlags() (*Config, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs defines and parses command-line flags using pflag.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}
	fset := pflag.NewFlagSet("linecut", pflag.ContinueOnError)

	// Define flags
	fset.StringVarP(&cfg.Pattern, "pattern", "p", "", "Regular expression to match; skips the interactive prompt.")
	fset.BoolVarP(&cfg.CaseSensitive, "case-sensitive", "c", false, "Start with case-sensitive matching.")
	fset.StringVar(&cfg.Backend, "backend", BackendNvim, "Where the document lives: 'nvim' or 'file'.")
	fset.StringVarP(&cfg.File, "file", "f", "", "File to edit. Required for the 'file' backend; opened in nvim otherwise.")
	fset.StringVar(&cfg.Server, "server", "", "Neovim server address (default: $NVIM or $NVIM_LISTEN_ADDRESS).")
	fset.StringVar(&cfg.Prompt, "prompt", PromptTUI, "How to ask for the search term: 'tui' or 'nvim'.")
	fset.StringVar(&cfg.Clipboard, "clipboard", ClipboardSystem, "Clipboard to use: 'system' or 'nvim' (a Neovim register).")
	fset.StringVar(&cfg.Register, "register", "+", "Neovim register used by --clipboard=nvim.")
	fset.BoolVarP(&cfg.Write, "write", "w", false, "Write the Neovim buffer to disk after deleting lines.")
	fset.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print debug information.")
	fset.StringVar(&cfg.ConfigPath, "config", DefaultConfigPath(), "YAML file with default flag values.")

	fset.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: linecut <command> [flags]")
		fmt.Fprintln(os.Stderr, "\nDelete, cut or copy every line of the active document that matches a regular expression.")
		fmt.Fprintln(os.Stderr, "\nExample: linecut cut-lines-to-new -p '^TODO'")
		fmt.Fprintln(os.Stderr, "\nCommands:")
		fmt.Fprintln(os.Stderr, "  delete-lines, cut-lines, copy-lines, cut-lines-to-new, copy-lines-to-new")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fset.PrintDefaults()
	}

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	rest := fset.Args()
	if len(rest) != 1 {
		fset.Usage()
		return nil, errors.New("error: exactly one command is required")
	}
	cfg.Command = rest[0]
	cfg.HasPattern = fset.Changed("pattern")

	fc, err := LoadFile(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyFile(cfg, fc, fset.Changed)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile copies file values into cfg for flags the user did not set.
func applyFile(cfg *Config, fc *FileConfig, changed func(string) bool) {
	if fc.CaseSensitive != nil && !changed("case-sensitive") {
		cfg.CaseSensitive = *fc.CaseSensitive
	}
	if fc.Backend != "" && !changed("backend") {
		cfg.Backend = fc.Backend
	}
	if fc.Prompt != "" && !changed("prompt") {
		cfg.Prompt = fc.Prompt
	}
	if fc.Clipboard != "" && !changed("clipboard") {
		cfg.Clipboard = fc.Clipboard
	}
	if fc.Register != "" && !changed("register") {
		cfg.Register = fc.Register
	}
	if fc.Write != nil && !changed("write") {
		cfg.Write = *fc.Write
	}
}

func (cfg *Config) validate() error {
	if err := oneOf("backend", cfg.Backend, BackendNvim, BackendFile); err != nil {
		return err
	}
	if err := oneOf("prompt", cfg.Prompt, PromptTUI, PromptNvim); err != nil {
		return err
	}
	if err := oneOf("clipboard", cfg.Clipboard, ClipboardSystem, ClipboardNvim); err != nil {
		return err
	}
	if cfg.Backend == BackendFile {
		if cfg.File == "" {
			return errors.New("error: --backend=file requires --file")
		}
		if cfg.Prompt == PromptNvim || cfg.Clipboard == ClipboardNvim {
			return errors.New("error: --prompt=nvim and --clipboard=nvim need --backend=nvim")
		}
	}
	if len(cfg.Register) != 1 {
		return fmt.Errorf("error: --register must be a single register name, got %q", cfg.Register)
	}
	return nil
}

func oneOf(flag, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("error: --%s must be one of %s, got %q", flag, strings.Join(allowed, ", "), value)
}
