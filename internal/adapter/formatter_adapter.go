package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

// ErrFormatConfig is returned when the formatting rules cannot be loaded.
var ErrFormatConfig = errors.New("format config unavailable")

// End-of-line styles understood by the formatter.
const (
	EndOfLineLF   = "lf"
	EndOfLineCRLF = "crlf"
	EndOfLineCR   = "cr"
	EndOfLineAuto = "auto"
)

// FormatConfig holds the Prettier options pcmark itself honors. The rc file
// may be JSON or YAML. An external formatter receives the whole file through
// --config, so every other option still applies there.
type FormatConfig struct {
	Path           m.Path `yaml:"-"`
	EndOfLine      string `yaml:"endOfLine"`
	JSXSingleQuote bool   `yaml:"jsxSingleQuote"`
}

// FormatterAdapter applies the project's formatting rules to generated code.
type FormatterAdapter interface {
	// LoadConfig reads the formatting rules file.
	LoadConfig(ctx context.Context, path m.Path) (FormatConfig, error)

	// Format returns src formatted according to cfg. filename is used by
	// external formatters to pick a parser.
	Format(ctx context.Context, filename m.Path, src []byte, cfg FormatConfig) ([]byte, error)
}

// LocalFormatterAdapter formats with an external command when one is
// configured and with the built-in normalizer otherwise.
type LocalFormatterAdapter struct {
	command []string
	timeout time.Duration
}

// NewLocalFormatterAdapter constructs a LocalFormatterAdapter. command is the
// external formatter invocation (e.g. "npx prettier"); empty selects the
// built-in normalizer.
func NewLocalFormatterAdapter(command string, timeout time.Duration) *LocalFormatterAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &LocalFormatterAdapter{
		command: strings.Fields(command),
		timeout: timeout,
	}
}

// LoadConfig reads and decodes the rc file at path.
func (a *LocalFormatterAdapter) LoadConfig(ctx context.Context, path m.Path) (FormatConfig, error) {
	if err := ctx.Err(); err != nil {
		return FormatConfig{}, err
	}

	// #nosec G304 - path is the configured rc file
	raw, err := os.ReadFile(string(path))
	if err != nil {
		return FormatConfig{}, fmt.Errorf("%w: %s: %w", ErrFormatConfig, path, err)
	}

	cfg, err := ParseFormatConfig(raw)
	if err != nil {
		return FormatConfig{}, fmt.Errorf("%w: %s: %w", ErrFormatConfig, path, err)
	}

	cfg.Path = path

	return cfg, nil
}

// ParseFormatConfig decodes Prettier rc content. JSON is valid YAML, so one
// decoder covers both rc flavors.
func ParseFormatConfig(raw []byte) (FormatConfig, error) {
	cfg := FormatConfig{EndOfLine: EndOfLineLF}

	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return FormatConfig{}, err
	}

	cfg.EndOfLine = strings.ToLower(strings.TrimSpace(cfg.EndOfLine))
	if cfg.EndOfLine == "" {
		cfg.EndOfLine = EndOfLineLF
	}

	return cfg, nil
}

// Format runs the configured formatter.
func (a *LocalFormatterAdapter) Format(ctx context.Context, filename m.Path, src []byte, cfg FormatConfig) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(a.command) == 0 {
		return Normalize(src, cfg), nil
	}

	return a.runCommand(ctx, filename, src, cfg)
}

func (a *LocalFormatterAdapter) runCommand(ctx context.Context, filename m.Path, src []byte, cfg FormatConfig) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	args := append([]string{}, a.command[1:]...)
	args = append(args, "--stdin-filepath", string(filename))

	if cfg.Path != "" {
		args = append(args, "--config", string(cfg.Path))
	}

	// #nosec G204 - the formatter command comes from the user's own configuration
	cmd := exec.CommandContext(ctx, a.command[0], args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdin = bytes.NewReader(src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", a.command[0], err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// Normalize applies the built-in formatting rules: line endings follow
// cfg.EndOfLine and the file ends with exactly one line break. Normalize is
// idempotent.
func Normalize(src []byte, cfg FormatConfig) []byte {
	eol := "\n"

	switch cfg.EndOfLine {
	case EndOfLineCRLF:
		eol = "\r\n"
	case EndOfLineCR:
		eol = "\r"
	case EndOfLineAuto:
		eol = detectEOL(src)
	}

	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimRight(text, "\n")

	if text == "" {
		return []byte{}
	}

	text += "\n"

	if eol != "\n" {
		text = strings.ReplaceAll(text, "\n", eol)
	}

	return []byte(text)
}

func detectEOL(src []byte) string {
	idx := bytes.IndexAny(src, "\r\n")
	if idx < 0 {
		return "\n"
	}

	if src[idx] == '\r' {
		if idx+1 < len(src) && src[idx+1] == '\n' {
			return "\r\n"
		}

		return "\r"
	}

	return "\n"
}
