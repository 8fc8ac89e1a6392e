package workers

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls atomic.Int32
}

func (s *countingSource) Stats() domain.RelayStats {
	s.calls.Add(1)
	return domain.RelayStats{Connections: 2, Rooms: 1, Users: 2, QueueSize: 0, MaxCapacity: 16}
}

func TestProcessSelfStats(t *testing.T) {
	req := require.New(t)
	p, err := process.NewProcess(int32(os.Getpid()))
	req.NoError(err)

	stats, err := ProcessSelfStats(p)

	req.NoError(err)
	req.Equal(int32(os.Getpid()), stats.PID)
	req.NotZero(stats.RSSBytes)
	req.NotEmpty(stats.Status)
}

func TestStatsWorker_Samples_Until_Canceled(t *testing.T) {
	req := require.New(t)
	source := &countingSource{}
	worker := NewStatsWorker(source, 5*time.Millisecond, logs.GetLoggerFromLevel(slog.LevelDebug))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	req.Eventually(func() bool { return source.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	req.ErrorIs(<-done, context.Canceled)
}
