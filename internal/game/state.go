package game

// ArenaStatus represents the current lifecycle state of an arena
type ArenaStatus string

const (
	StatusIdle    ArenaStatus = "IDLE"
	StatusRunning ArenaStatus = "RUNNING"
	StatusClosed  ArenaStatus = "CLOSED"
)
