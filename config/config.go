// Package config loads settings for the host program and the chat backend
// from the environment and an optional .env file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Host configures the terminal host page and the widget embedded in it.
type Host struct {
	Endpoint    string        `env:"CHATWIDGET_ENDPOINT" envDefault:"http://localhost:8000/chat"`
	Page        string        `env:"CHATWIDGET_PAGE"`
	Embed       string        `env:"CHATWIDGET_EMBED"`
	StyleURL    string        `env:"CHATWIDGET_STYLE_URL"`
	Ordering    string        `env:"CHATWIDGET_ORDERING" envDefault:"issue"`
	HTTPTimeout time.Duration `env:"CHATWIDGET_HTTP_TIMEOUT" envDefault:"0s"`
	ExportDir   string        `env:"CHATWIDGET_EXPORT_DIR" envDefault:"."`
	LogFile     string        `env:"CHATWIDGET_LOG_FILE"`
	LogLevel    string        `env:"CHATWIDGET_LOG_LEVEL" envDefault:"info"`
	WireLog     string        `env:"CHATWIDGET_WIRE_LOG"`
}

// Backend configures the reference chat backend.
type Backend struct {
	Addr           string   `env:"CHAT_BACKEND_ADDR" envDefault:":8000"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	OpenAIKey      string   `env:"OPENAI_API_KEY"`
	OpenAIModel    string   `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	ScriptBase     string   `env:"CHAT_BACKEND_SCRIPT_BASE" envDefault:"http://localhost:8000/static"`
	AllowedOrigins []string `env:"CHAT_BACKEND_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel       string   `env:"CHAT_BACKEND_LOG_LEVEL" envDefault:"info"`
}

// LoadDotEnv loads files (".env" when none are given) into the process
// environment. Missing files are ignored and existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// LoadHost reads the host settings from the environment.
func LoadHost() (*Host, error) {
	cfg := &Host{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing host config: %w", err)
	}
	return cfg, nil
}

// LoadBackend reads the backend settings from the environment.
func LoadBackend() (*Backend, error) {
	cfg := &Backend{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing backend config: %w", err)
	}
	return cfg, nil
}

// PageDocument returns the contents of Page, or "" when no page is set.
func (h *Host) PageDocument() (string, error) {
	if h.Page == "" {
		return "", nil
	}
	data, err := os.ReadFile(h.Page)
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	return string(data), nil
}

// EmbedDocument returns the document the widget reads its identity from:
// Embed when set, otherwise page.
func (h *Host) EmbedDocument(page string) string {
	if h.Embed != "" {
		return h.Embed
	}
	return page
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger builds the host logger. Stdout belongs to the terminal UI, so logs
// go to LogFile as JSON, or nowhere when it is empty. The returned closer
// must be called on exit.
func (h *Host) Logger() (zerolog.Logger, io.Closer, error) {
	if h.LogFile == "" {
		return zerolog.New(io.Discard), io.NopCloser(nil), nil
	}
	w, err := openAppend(h.LogFile)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := zerolog.New(w).Level(ParseLevel(h.LogLevel)).With().Timestamp().Logger()
	return logger, w, nil
}

// WireLogger builds the JSONL logger for chat exchanges, or a disabled one
// when WireLog is empty.
func (h *Host) WireLogger() (zerolog.Logger, io.Closer, error) {
	if h.WireLog == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	w, err := openAppend(h.WireLog)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening wire log: %w", err)
	}
	return zerolog.New(w).With().Timestamp().Logger(), w, nil
}

// Logger builds the backend logger writing to w.
func (b *Backend) Logger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(b.LogLevel)).With().Timestamp().Str("service", "chat-backend").Logger()
}

func openAppend(name string) (*os.File, error) {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
