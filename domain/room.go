package domain

// DefaultRoom is seeded into every room registry and can never be removed.
const DefaultRoom = "General"

// MaxRoomNameLength bounds room names, counted in runes after trimming.
const MaxRoomNameLength = 64
