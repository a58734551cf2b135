package game

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/models"
	"github.com/hexclash/backend/internal/sim"
)

// captureBroadcaster records every message pushed to spectators so tests can
// assert on broadcast cadence and payload shape.
type captureBroadcaster struct {
	mu   sync.Mutex
	msgs []map[string]interface{}
}

func (c *captureBroadcaster) BroadcastToArena(arenaID string, message interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := message.(map[string]interface{}); ok {
		c.msgs = append(c.msgs, m)
	}
}

func (c *captureBroadcaster) countType(msgType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs {
		if m["type"] == msgType {
			n++
		}
	}
	return n
}

func testConfig() *config.Config {
	return &config.Config{
		BoardWidth:       800,
		BoardHeight:      600,
		RosterSize:       2,
		TimeScale:        1.0,
		MaxArenas:        4,
		ArenaIdleSeconds: 600,
	}
}

func newTestManager() *ArenaManager {
	return NewArenaManager(context.Background(), nil, nil, testConfig())
}

// newManualArena builds an arena whose run loop is never started, so tests
// can drive ticks by hand.
func newManualArena(mgr *ArenaManager, id string) *Arena {
	return newArena(id, sim.Config{Width: 800, Height: 600, RosterSize: 2, TimeScale: 1, Seed: 7}, mgr)
}

// driveSim advances the arena's simulation with a synthetic 60Hz clock.
func driveSim(a *Arena, ticks int) {
	for i := 0; i < ticks; i++ {
		a.sim.Tick(float64(i+1) * (1000.0 / 60.0))
	}
}

func TestCreateAndLookupArena(t *testing.T) {
	gm := newTestManager()

	a, err := gm.CreateArenaWithID("alpha", ArenaParams{Width: 800, Height: 600, RosterSize: 2, TimeScale: 1})
	if err != nil {
		t.Fatalf("CreateArenaWithID failed: %v", err)
	}
	if a.Status() != StatusIdle {
		t.Errorf("New arena should be IDLE, got %s", a.Status())
	}

	got, err := gm.GetArena("alpha")
	if err != nil || got != a {
		t.Errorf("GetArena(alpha) = %v, %v; want the created arena", got, err)
	}

	// Empty ID resolves to the default arena, which does not exist yet
	if _, err := gm.GetArena(""); err == nil {
		t.Error("GetArena(\"\") should fail before the default arena exists")
	}

	if _, err := gm.CreateArenaWithID(DefaultArenaID, ArenaParams{Width: 800, Height: 600, RosterSize: 1, TimeScale: 1}); err != nil {
		t.Fatalf("Failed to create default arena: %v", err)
	}
	def, err := gm.GetArena("")
	if err != nil || def.ID != DefaultArenaID {
		t.Errorf("GetArena(\"\") should resolve to %s, got %v, %v", DefaultArenaID, def, err)
	}

	gm.CloseArena("alpha", "test")
	gm.CloseArena(DefaultArenaID, "test")
}

func TestCreateArenaValidation(t *testing.T) {
	gm := newTestManager()

	if _, err := gm.CreateArenaWithID("bad", ArenaParams{Width: 0, Height: 600}); err == nil {
		t.Error("Zero width should be rejected")
	}
	if _, err := gm.CreateArenaWithID("bad", ArenaParams{Width: 800, Height: -1}); err == nil {
		t.Error("Negative height should be rejected")
	}
	if _, err := gm.CreateArenaWithID("bad", ArenaParams{Width: 100000, Height: 600}); err == nil {
		t.Error("Oversized width should be rejected")
	}

	if _, err := gm.CreateArenaWithID("dup", ArenaParams{Width: 800, Height: 600, RosterSize: 1, TimeScale: 1}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	if _, err := gm.CreateArenaWithID("dup", ArenaParams{Width: 800, Height: 600, RosterSize: 1, TimeScale: 1}); err == nil {
		t.Error("Duplicate arena ID should be rejected")
	}

	// MaxArenas is 4 in the test config
	for _, id := range []string{"a2", "a3", "a4"} {
		if _, err := gm.CreateArenaWithID(id, ArenaParams{Width: 800, Height: 600, RosterSize: 1, TimeScale: 1}); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}
	if _, err := gm.CreateArenaWithID("a5", ArenaParams{Width: 800, Height: 600, RosterSize: 1, TimeScale: 1}); err == nil {
		t.Error("Arena limit should be enforced")
	}

	for _, id := range []string{"dup", "a2", "a3", "a4"} {
		gm.CloseArena(id, "test")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	a := newManualArena(newTestManager(), "life")

	if a.Running() {
		t.Error("Arena should not be running before Start")
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if a.Status() != StatusRunning {
		t.Errorf("Status after Start = %s, want %s", a.Status(), StatusRunning)
	}

	// Starting again is a no-op
	if err := a.Start(); err != nil {
		t.Errorf("Second Start should be a no-op, got %v", err)
	}

	if err := a.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if a.Status() != StatusIdle {
		t.Errorf("Status after Stop = %s, want %s", a.Status(), StatusIdle)
	}
	if err := a.Stop(); err != nil {
		t.Errorf("Second Stop should be a no-op, got %v", err)
	}
}

func TestControlOpsClampValues(t *testing.T) {
	a := newManualArena(newTestManager(), "clamp")

	if applied, _ := a.SetTimeScale(100); applied != sim.MaxTimeScale {
		t.Errorf("TimeScale 100 should clamp to %.2f, got %.2f", sim.MaxTimeScale, applied)
	}
	if applied, _ := a.SetTimeScale(-3); applied != 0 {
		t.Errorf("Negative time scale should clamp to 0, got %.2f", applied)
	}

	if applied, _ := a.SetRosterSize(50); applied != sim.MaxRosterSize {
		t.Errorf("Roster 50 should clamp to %d, got %d", sim.MaxRosterSize, applied)
	}
	if applied, _ := a.SetRosterSize(-2); applied != 0 {
		t.Errorf("Negative roster should clamp to 0, got %d", applied)
	}
}

func TestControlOpsFailWhenClosed(t *testing.T) {
	a := newManualArena(newTestManager(), "dead")
	a.Close("test")
	a.Close("test") // second close is safe

	if a.Status() != StatusClosed {
		t.Fatalf("Status after Close = %s, want %s", a.Status(), StatusClosed)
	}

	if err := a.Start(); err == nil || !strings.Contains(err.Error(), "closed") {
		t.Errorf("Start on closed arena should fail, got %v", err)
	}
	if err := a.Stop(); err == nil {
		t.Error("Stop on closed arena should fail")
	}
	if err := a.ResetBoard(); err == nil {
		t.Error("ResetBoard on closed arena should fail")
	}
	if _, err := a.SetTimeScale(2); err == nil {
		t.Error("SetTimeScale on closed arena should fail")
	}
	if _, err := a.SetRosterSize(1); err == nil {
		t.Error("SetRosterSize on closed arena should fail")
	}
	if err := a.Resize(640, 480); err == nil {
		t.Error("Resize on closed arena should fail")
	}
}

func TestMatchResultCapture(t *testing.T) {
	a := newManualArena(newTestManager(), "match")

	// No match has started yet, so there is nothing to record
	a.mu.Lock()
	res := a.buildResultLocked(models.EndReasonReset)
	a.mu.Unlock()
	if res != nil {
		t.Fatalf("Result before Start should be nil, got %+v", res)
	}

	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	driveSim(a, 1800) // 30 simulated seconds

	a.mu.Lock()
	res = a.buildResultLocked(models.EndReasonClosed)
	a.mu.Unlock()
	if res == nil {
		t.Fatal("Result after Start should not be nil")
	}
	if res.ArenaID != "match" || res.EndReason != models.EndReasonClosed {
		t.Errorf("Result identity wrong: %+v", res)
	}
	if res.BoardWidth != 800 || res.BoardHeight != 600 {
		t.Errorf("Result board size = %.0fx%.0f, want 800x600", res.BoardWidth, res.BoardHeight)
	}
	if res.RosterSize != 2 {
		t.Errorf("Result roster = %d, want 2", res.RosterSize)
	}
	if res.EndedAt.Before(res.StartedAt) {
		t.Error("EndedAt should not precede StartedAt")
	}

	switch {
	case res.WhitePoints > res.BlackPoints && res.Winner != models.WinnerWhite:
		t.Errorf("Winner = %s with score %d-%d", res.Winner, res.WhitePoints, res.BlackPoints)
	case res.BlackPoints > res.WhitePoints && res.Winner != models.WinnerBlack:
		t.Errorf("Winner = %s with score %d-%d", res.Winner, res.WhitePoints, res.BlackPoints)
	case res.WhitePoints == res.BlackPoints && res.Winner != models.WinnerDraw:
		t.Errorf("Winner = %s with score %d-%d", res.Winner, res.WhitePoints, res.BlackPoints)
	}
}

func TestResetBoardZeroesScore(t *testing.T) {
	a := newManualArena(newTestManager(), "reset")

	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	driveSim(a, 1800)

	if err := a.ResetBoard(); err != nil {
		t.Fatalf("ResetBoard failed: %v", err)
	}
	white, black := a.Score()
	if white != 0 || black != 0 {
		t.Errorf("Score after reset = %d-%d, want 0-0", white, black)
	}
	// A running arena keeps running through a reset
	if a.Status() != StatusRunning {
		t.Errorf("Status after reset = %s, want %s", a.Status(), StatusRunning)
	}
}

func TestResizeKeepsScore(t *testing.T) {
	a := newManualArena(newTestManager(), "resize")

	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	driveSim(a, 1800)
	whiteBefore, blackBefore := a.Score()

	if err := a.Resize(1024, 768); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	white, black := a.Score()
	if white != whiteBefore || black != blackBefore {
		t.Errorf("Score changed across resize: %d-%d -> %d-%d", whiteBefore, blackBefore, white, black)
	}

	sum := a.Summary()
	if sum.Width != 1024 || sum.Height != 768 {
		t.Errorf("Summary size = %.0fx%.0f, want 1024x768", sum.Width, sum.Height)
	}

	if err := a.Resize(0, 768); err == nil {
		t.Error("Resize to zero width should fail")
	}
	if err := a.Resize(100000, 768); err == nil {
		t.Error("Resize past the dimension cap should fail")
	}
}

func TestBroadcastCadence(t *testing.T) {
	gm := newTestManager()
	capture := &captureBroadcaster{}
	gm.SetBroadcaster(capture)
	a := newManualArena(gm, "cadence")

	// Idle arena produces no frames
	for i := 0; i < 6; i++ {
		a.tickOnce()
	}
	if n := capture.countType("frame"); n != 0 {
		t.Errorf("Idle arena broadcast %d frames, want 0", n)
	}

	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 6; i++ {
		a.tickOnce()
	}
	// 6 ticks at a 3-tick broadcast interval is exactly 2 frames
	if n := capture.countType("frame"); n != 2 {
		t.Errorf("Running arena broadcast %d frames over 6 ticks, want 2", n)
	}

	capture.mu.Lock()
	var frame map[string]interface{}
	for _, m := range capture.msgs {
		if m["type"] == "frame" {
			frame = m
			break
		}
	}
	capture.mu.Unlock()
	if frame == nil {
		t.Fatal("No frame captured")
	}
	for _, key := range []string{"arena_id", "ts", "discs", "points_white", "points_black"} {
		if _, ok := frame[key]; !ok {
			t.Errorf("Frame payload missing %q", key)
		}
	}
	if frame["arena_id"] != "cadence" {
		t.Errorf("Frame arena_id = %v, want cadence", frame["arena_id"])
	}
}

func TestStateMessageShape(t *testing.T) {
	a := newManualArena(newTestManager(), "shape")

	msg := a.StateMessage()
	if msg["type"] != "board_state" {
		t.Errorf("StateMessage type = %v, want board_state", msg["type"])
	}
	if msg["arena_id"] != "shape" {
		t.Errorf("StateMessage arena_id = %v, want shape", msg["arena_id"])
	}
	board, ok := msg["board"].(sim.Snapshot)
	if !ok {
		t.Fatalf("StateMessage board has wrong type %T", msg["board"])
	}
	if board.Width != 800 || board.Height != 600 {
		t.Errorf("Snapshot size = %.0fx%.0f, want 800x600", board.Width, board.Height)
	}
	if len(board.Discs) != 4 {
		t.Errorf("Snapshot discs = %d, want 4 (2 per team)", len(board.Discs))
	}
}

func TestSpectatorCounts(t *testing.T) {
	a := newManualArena(newTestManager(), "spect")

	if n := a.RemoveSpectator(); n != 0 {
		t.Errorf("RemoveSpectator on empty arena = %d, want 0", n)
	}
	a.AddSpectator()
	if n := a.AddSpectator(); n != 2 {
		t.Errorf("Second AddSpectator = %d, want 2", n)
	}
	if n := a.RemoveSpectator(); n != 1 {
		t.Errorf("RemoveSpectator = %d, want 1", n)
	}
	if a.SpectatorCount() != 1 {
		t.Errorf("SpectatorCount = %d, want 1", a.SpectatorCount())
	}
}

func TestListArenasSorted(t *testing.T) {
	gm := newTestManager()
	for _, id := range []string{"banana", "apple", "cherry"} {
		if _, err := gm.CreateArenaWithID(id, ArenaParams{Width: 800, Height: 600, RosterSize: 1, TimeScale: 1}); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}

	list := gm.ListArenas()
	if len(list) != 3 {
		t.Fatalf("ListArenas returned %d entries, want 3", len(list))
	}
	want := []string{"apple", "banana", "cherry"}
	for i, sum := range list {
		if sum.ID != want[i] {
			t.Errorf("ListArenas[%d] = %s, want %s", i, sum.ID, want[i])
		}
	}

	for _, id := range want {
		gm.CloseArena(id, "test")
	}
	if gm.ArenaCount() != 0 {
		t.Errorf("ArenaCount after closing all = %d, want 0", gm.ArenaCount())
	}
}

func TestCloseArenaRemovesIt(t *testing.T) {
	gm := newTestManager()
	a, err := gm.CreateArenaWithID("gone", ArenaParams{Width: 800, Height: 600, RosterSize: 1, TimeScale: 1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := gm.CloseArena("gone", "test"); err != nil {
		t.Fatalf("CloseArena failed: %v", err)
	}
	if a.Status() != StatusClosed {
		t.Errorf("Arena status after CloseArena = %s, want %s", a.Status(), StatusClosed)
	}
	if _, err := gm.GetArena("gone"); err == nil {
		t.Error("GetArena should fail after CloseArena")
	}
	if err := gm.CloseArena("gone", "test"); err == nil {
		t.Error("Second CloseArena should report not found")
	}
}

func TestGeneratedArenaIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := generateArenaID()
		if !strings.HasPrefix(id, "arena_") {
			t.Fatalf("Arena ID %q missing prefix", id)
		}
		if len(id) != len("arena_")+8 {
			t.Fatalf("Arena ID %q has wrong length", id)
		}
		if seen[id] {
			t.Fatalf("Arena ID %q repeated", id)
		}
		seen[id] = true
	}
}
