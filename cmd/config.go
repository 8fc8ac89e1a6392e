package main

import (
	"chat-relay/contract"
	"chat-relay/errors"
	"chat-relay/infrastructure/storage"
	"chat-relay/runtime"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"
)

const (
	memoryBackend = "memory"
	badgerBackend = "badger"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	HistoryLimit         int           `env:"HISTORY_LIMIT,default=200"`
	HistoryBackend       string        `env:"HISTORY_BACKEND,default=memory"`
	MaxRooms             int           `env:"MAX_ROOMS,default=0"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=2000"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	StatsInterval        time.Duration `env:"STATS_INTERVAL,default=0s"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	EnableModeration     bool          `env:"ENABLE_MODERATION,default=false"`
	AuthSecret           string        `env:"AUTH_SECRET"`
	ReadTimeout          time.Duration `env:"READ_TIMEOUT,default=0s"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReplacementRune is the first rune of CHARACTER_REPLACEMENT, '*' when empty.
func (c Config) ReplacementRune() rune {
	r, _ := utf8.DecodeRuneInString(c.CharReplacement)
	if r == utf8.RuneError {
		return '*'
	}
	return r
}

// newHistory builds the configured history backend and the function releasing it.
func newHistory(c Config, log *slog.Logger) (contract.HistoryStore, func() error, error) {
	switch c.HistoryBackend {
	case memoryBackend, "":
		return runtime.NewMemoryHistory(c.HistoryLimit), func() error { return nil }, nil
	case badgerBackend:
		history, err := storage.OpenBadgerHistory(log, c.HistoryLimit)
		if err != nil {
			return nil, nil, err
		}
		return history, history.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errors.ErrUnknownBackend, c.HistoryBackend)
	}
}
