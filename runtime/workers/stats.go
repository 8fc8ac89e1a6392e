package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*StatsWorker)(nil)

// StatsSource exposes the relay load.
type StatsSource interface {
	Stats() domain.RelayStats
}

// StatsWorker periodically logs the relay load next to the process health (CPU, RAM, status).
type StatsWorker struct {
	source   StatsSource
	interval time.Duration
	log      *slog.Logger
}

func NewStatsWorker(source StatsSource, interval time.Duration, log *slog.Logger) *StatsWorker {
	return &StatsWorker{source: source, interval: interval, log: log}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			relay := w.source.Stats()
			attrs := []any{
				"connections", relay.Connections,
				"rooms", relay.Rooms,
				"users", relay.Users,
				"queue", relay.QueueSize,
				"capacity", relay.MaxCapacity,
			}
			proc, err := ProcessSelfStats(p)
			if err != nil {
				w.log.Warn("Failed to collect self stats", "error", err)
			} else {
				attrs = append(attrs, "rss", proc.RSSBytes, "cpu", proc.CPUPercent, "status", proc.Status)
			}
			w.log.Info("Relay stats", attrs...)
		}
	}
}

// ProcessSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func ProcessSelfStats(p *process.Process) (domain.ProcessStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return domain.ProcessStats{}, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return domain.ProcessStats{}, err
	}

	status, err := p.Status()
	if err != nil {
		return domain.ProcessStats{}, err
	}
	return domain.ProcessStats{
		PID:        p.Pid,
		Status:     status,
		CPUPercent: cpuPercent,
		RSSBytes:   memInfo.RSS,
	}, nil
}
