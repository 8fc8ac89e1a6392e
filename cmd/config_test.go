package main

import (
	"chat-relay/errors"
	"chat-relay/infrastructure/storage"
	"chat-relay/runtime"
	"log/slog"
	"testing"

	"github.com/Netflix/go-env"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	var config Config

	err := env.Unmarshal(env.EnvSet{}, &config)

	req.NoError(err)
	req.Equal("localhost:8080", config.Address())
	req.Equal(200, config.HistoryLimit)
	req.Equal(memoryBackend, config.HistoryBackend)
	req.Equal('*', config.ReplacementRune())
	req.False(config.EnableModeration)
}

func TestConfig_Overrides(t *testing.T) {
	req := require.New(t)
	var config Config

	err := env.Unmarshal(env.EnvSet{
		"PORT":                  "9000",
		"HISTORY_BACKEND":       "badger",
		"CHARACTER_REPLACEMENT": "§",
		"ENABLE_MODERATION":     "true",
	}, &config)

	req.NoError(err)
	req.Equal("localhost:9000", config.Address())
	req.Equal('§', config.ReplacementRune())
	req.True(config.EnableModeration)
}

func TestNewHistory(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	history, closeHistory, err := newHistory(Config{HistoryBackend: memoryBackend}, log)
	req.NoError(err)
	req.IsType(&runtime.MemoryHistory{}, history)
	req.NoError(closeHistory())

	history, closeHistory, err = newHistory(Config{HistoryBackend: badgerBackend, HistoryLimit: 5}, log)
	req.NoError(err)
	req.IsType(&storage.BadgerHistory{}, history)
	req.NoError(closeHistory())

	_, _, err = newHistory(Config{HistoryBackend: "redis"}, log)
	req.ErrorIs(err, errors.ErrUnknownBackend)
}
