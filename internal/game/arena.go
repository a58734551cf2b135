package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hexclash/backend/internal/models"
	"github.com/hexclash/backend/internal/sim"
)

const (
	// TickHz is the fixed simulation step rate of every arena run loop.
	TickHz = 60
	// BroadcastHz is the rate frames are pushed to spectators. Cell flips
	// from the ticks in between are carried along so no claim is lost.
	BroadcastHz = 20

	broadcastEvery = TickHz / BroadcastHz
)

// Arena wraps one board simulation with its lifecycle, spectator count and
// broadcast throttling. All exported methods are safe for concurrent use.
type Arena struct {
	ID        string
	CreatedAt time.Time

	sim        *sim.Simulation
	sink       *arenaSink
	status     ArenaStatus
	startedAt  time.Time // zero until the current match has started
	epoch      time.Time // origin of the simulation clock
	tickCount  uint64
	spectators int
	manager    *ArenaManager
	cancel     context.CancelFunc

	mu sync.RWMutex
}

// arenaSink collects frames and score pushes emitted by the simulation.
// Its methods only ever run inside Simulation.Tick and the control
// operations, all of which hold the arena mutex, so the fields need no
// locking of their own.
type arenaSink struct {
	latest     sim.Frame
	hasFrame   bool
	deltas     []sim.CellDelta
	scoreWhite int
	scoreBlack int
	scoreDirty bool
}

func (s *arenaSink) RenderFrame(f sim.Frame) {
	s.latest = f
	s.hasFrame = true
	if len(f.Flipped) > 0 {
		s.deltas = append(s.deltas, f.Flipped...)
	}
}

func (s *arenaSink) UpdateScore(white, black int) {
	s.scoreWhite = white
	s.scoreBlack = black
	s.scoreDirty = true
}

// newArena builds an arena around a fresh simulation. The run loop is
// started separately by the manager.
func newArena(id string, cfg sim.Config, mgr *ArenaManager) *Arena {
	a := &Arena{
		ID:        id,
		CreatedAt: time.Now(),
		sink:      &arenaSink{},
		status:    StatusIdle,
		epoch:     time.Now(),
		manager:   mgr,
	}
	a.sim = sim.New(cfg)
	a.sim.SetRenderer(a.sink)
	a.sim.SetScoreboard(a.sink)
	return a
}

// Run drives the simulation at TickHz until the context is cancelled.
func (a *Arena) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / TickHz)
	defer ticker.Stop()

	log.Printf("[ARENA] %s run loop started (tick=%dHz broadcast=%dHz)", a.ID, TickHz, BroadcastHz)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[ARENA] %s run loop stopped", a.ID)
			return
		case <-ticker.C:
			a.tickOnce()
		}
	}
}

// tickOnce advances the simulation a single step and flushes any pending
// broadcast output. Network I/O happens after the lock is released.
func (a *Arena) tickOnce() {
	a.mu.Lock()
	if a.status == StatusClosed {
		a.mu.Unlock()
		return
	}

	a.sim.Tick(a.clockMillis())
	a.tickCount++

	var frameMsg map[string]interface{}
	if a.tickCount%broadcastEvery == 0 && a.sink.hasFrame {
		frameMsg = map[string]interface{}{
			"type":         "frame",
			"arena_id":     a.ID,
			"ts":           a.sink.latest.TS,
			"discs":        a.sink.latest.Discs,
			"flipped":      a.sink.deltas,
			"points_white": a.sink.latest.PointsWhite,
			"points_black": a.sink.latest.PointsBlack,
		}
		a.sink.deltas = nil
		a.sink.hasFrame = false
	}

	var scoreMsg map[string]interface{}
	if a.sink.scoreDirty {
		scoreMsg = map[string]interface{}{
			"type":         "score_update",
			"arena_id":     a.ID,
			"points_white": a.sink.scoreWhite,
			"points_black": a.sink.scoreBlack,
		}
		a.sink.scoreDirty = false
	}
	white, black := a.sink.scoreWhite, a.sink.scoreBlack
	a.mu.Unlock()

	if frameMsg != nil {
		a.manager.Broadcast(a.ID, frameMsg)
	}
	if scoreMsg != nil {
		a.manager.Broadcast(a.ID, scoreMsg)
		a.manager.mirrorScore(a.ID, white, black)
	}
}

// clockMillis returns milliseconds since the arena was created, with
// sub-millisecond precision so tick deltas stay accurate at 60Hz.
func (a *Arena) clockMillis() float64 {
	return float64(time.Since(a.epoch).Microseconds()) / 1000.0
}

// Start begins or resumes play. Starting a running arena is a no-op.
func (a *Arena) Start() error {
	a.mu.Lock()
	if a.status == StatusClosed {
		a.mu.Unlock()
		return fmt.Errorf("arena %s is closed", a.ID)
	}
	if a.status == StatusRunning {
		a.mu.Unlock()
		return nil
	}
	a.sim.Start()
	a.status = StatusRunning
	if a.startedAt.IsZero() {
		a.startedAt = time.Now()
	}
	snap := a.stateMessageLocked()
	a.mu.Unlock()

	log.Printf("[ARENA] %s started", a.ID)
	a.manager.Broadcast(a.ID, snap)
	a.manager.touchArena(a.ID)
	return nil
}

// Stop pauses play. Discs freeze in place and the board keeps its colors.
func (a *Arena) Stop() error {
	a.mu.Lock()
	if a.status == StatusClosed {
		a.mu.Unlock()
		return fmt.Errorf("arena %s is closed", a.ID)
	}
	if a.status == StatusIdle {
		a.mu.Unlock()
		return nil
	}
	a.sim.Stop()
	a.status = StatusIdle
	snap := a.stateMessageLocked()
	a.mu.Unlock()

	log.Printf("[ARENA] %s paused", a.ID)
	a.manager.Broadcast(a.ID, snap)
	a.manager.touchArena(a.ID)
	return nil
}

// ResetBoard records the finished match, recolors the board to the midline
// split and zeroes the score. Discs keep their positions and velocities,
// and a running arena keeps running.
func (a *Arena) ResetBoard() error {
	a.mu.Lock()
	if a.status == StatusClosed {
		a.mu.Unlock()
		return fmt.Errorf("arena %s is closed", a.ID)
	}
	res := a.buildResultLocked(models.EndReasonReset)
	a.sim.ResetBoard()
	if a.status == StatusRunning {
		a.startedAt = time.Now()
	} else {
		a.startedAt = time.Time{}
	}
	snap := a.stateMessageLocked()
	a.mu.Unlock()

	log.Printf("[ARENA] %s board reset", a.ID)
	if res != nil {
		go a.manager.recordResult(res)
	}
	a.manager.Broadcast(a.ID, snap)
	a.manager.touchArena(a.ID)
	return nil
}

// Resize changes the board dimensions. The grid is rebuilt at the new size,
// discs are clamped back inside the walls and the match keeps its score.
func (a *Arena) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid board size %.0fx%.0f", width, height)
	}
	if width > maxBoardDim || height > maxBoardDim {
		return fmt.Errorf("board dimensions exceed %d", maxBoardDim)
	}
	a.mu.Lock()
	if a.status == StatusClosed {
		a.mu.Unlock()
		return fmt.Errorf("arena %s is closed", a.ID)
	}
	a.sim.Resize(width, height)
	snap := a.stateMessageLocked()
	a.mu.Unlock()

	log.Printf("[ARENA] %s resized to %.0fx%.0f", a.ID, width, height)
	a.manager.Broadcast(a.ID, snap)
	a.manager.touchArena(a.ID)
	return nil
}

// SetTimeScale sets the speed multiplier and returns the value actually
// applied after clamping.
func (a *Arena) SetTimeScale(v float64) (float64, error) {
	a.mu.Lock()
	if a.status == StatusClosed {
		a.mu.Unlock()
		return 0, fmt.Errorf("arena %s is closed", a.ID)
	}
	a.sim.SetTimeScale(v)
	applied := a.sim.TimeScale()
	a.mu.Unlock()

	log.Printf("[ARENA] %s time scale set to %.2f", a.ID, applied)
	a.manager.touchArena(a.ID)
	return applied, nil
}

// SetRosterSize sets the per-team disc count and respawns both rosters.
// Returns the value actually applied after clamping.
func (a *Arena) SetRosterSize(n int) (int, error) {
	a.mu.Lock()
	if a.status == StatusClosed {
		a.mu.Unlock()
		return 0, fmt.Errorf("arena %s is closed", a.ID)
	}
	a.sim.SetRosterSize(n)
	applied := a.sim.RosterSize()
	snap := a.stateMessageLocked()
	a.mu.Unlock()

	log.Printf("[ARENA] %s roster size set to %d", a.ID, applied)
	a.manager.Broadcast(a.ID, snap)
	a.manager.touchArena(a.ID)
	return applied, nil
}

// Close finalizes the arena: the running match is recorded, the loop is
// cancelled and the arena refuses further control operations. Calling Close
// twice is safe.
func (a *Arena) Close(reason string) {
	a.mu.Lock()
	if a.status == StatusClosed {
		a.mu.Unlock()
		return
	}
	res := a.buildResultLocked(models.EndReasonClosed)
	a.sim.Stop()
	a.status = StatusClosed
	cancel := a.cancel
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if res != nil {
		go a.manager.recordResult(res)
	}
	log.Printf("[ARENA] %s closed (%s)", a.ID, reason)
}

// buildResultLocked captures the current match as a ledger row, or nil when
// no match has started. Caller must hold a.mu.
func (a *Arena) buildResultLocked(endReason string) *models.MatchResult {
	if a.startedAt.IsZero() {
		return nil
	}
	white, black := a.sim.Points()
	width, height := a.sim.Bounds()
	winner := models.WinnerDraw
	if white > black {
		winner = models.WinnerWhite
	} else if black > white {
		winner = models.WinnerBlack
	}
	return &models.MatchResult{
		ArenaID:     a.ID,
		BoardWidth:  width,
		BoardHeight: height,
		RosterSize:  a.sim.RosterSize(),
		WhitePoints: white,
		BlackPoints: black,
		Winner:      winner,
		EndReason:   endReason,
		StartedAt:   a.startedAt,
		EndedAt:     time.Now(),
	}
}

// ArenaSnapshot is the full arena state returned to REST and WebSocket
// clients when they need everything, not just a frame.
type ArenaSnapshot struct {
	ArenaID    string       `json:"arena_id"`
	Status     ArenaStatus  `json:"status"`
	Spectators int          `json:"spectators"`
	CreatedAt  time.Time    `json:"created_at"`
	Board      sim.Snapshot `json:"board"`
}

// Snapshot returns the arena's full state.
func (a *Arena) Snapshot() ArenaSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

func (a *Arena) snapshotLocked() ArenaSnapshot {
	return ArenaSnapshot{
		ArenaID:    a.ID,
		Status:     a.status,
		Spectators: a.spectators,
		CreatedAt:  a.CreatedAt,
		Board:      a.sim.Snapshot(),
	}
}

// StateMessage builds the board_state payload sent on joins and after
// board-changing control operations.
func (a *Arena) StateMessage() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stateMessageLocked()
}

func (a *Arena) stateMessageLocked() map[string]interface{} {
	snap := a.snapshotLocked()
	return map[string]interface{}{
		"type":       "board_state",
		"arena_id":   snap.ArenaID,
		"status":     snap.Status,
		"spectators": snap.Spectators,
		"board":      snap.Board,
	}
}

// Summary returns the listing row for this arena.
func (a *Arena) Summary() ArenaSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	white, black := a.sim.Points()
	width, height := a.sim.Bounds()
	return ArenaSummary{
		ID:          a.ID,
		Status:      a.status,
		Width:       width,
		Height:      height,
		RosterSize:  a.sim.RosterSize(),
		TimeScale:   a.sim.TimeScale(),
		Spectators:  a.spectators,
		PointsWhite: white,
		PointsBlack: black,
		CreatedAt:   a.CreatedAt,
	}
}

// Score returns the current points tally.
func (a *Arena) Score() (int, int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sim.Points()
}

// Status returns the arena's lifecycle state.
func (a *Arena) Status() ArenaStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Running reports whether the simulation is advancing.
func (a *Arena) Running() bool {
	return a.Status() == StatusRunning
}

// AddSpectator increments the spectator count and returns the new count.
func (a *Arena) AddSpectator() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spectators++
	return a.spectators
}

// RemoveSpectator decrements the spectator count and returns the new count.
func (a *Arena) RemoveSpectator() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.spectators > 0 {
		a.spectators--
	}
	return a.spectators
}

// SpectatorCount returns the number of connected spectators.
func (a *Arena) SpectatorCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.spectators
}
