package domain

// RelayStats is a point-in-time view of the relay load.
type RelayStats struct {
	Connections int
	Rooms       int
	Users       int
	QueueSize   int
	MaxCapacity int
}

// ProcessStats describes the relay process as seen by the OS.
type ProcessStats struct {
	PID        int32
	Status     string
	CPUPercent float64
	RSSBytes   uint64
}
