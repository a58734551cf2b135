package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/sim"
)

const (
	// DefaultArenaID names the always-present arena booted at startup. It is
	// exempt from idle reaping.
	DefaultArenaID = "main"

	// maxBoardDim caps arena dimensions accepted from the API.
	maxBoardDim = 8192

	arenaIdleKey    = "arena:idle"
	arenaEventsChan = "arena_events"
	arenaScorePref  = "arena:score:"
)

// Broadcaster pushes arena-scoped messages to connected spectators. The
// WebSocket hub implements it; main wires the two together at startup.
type Broadcaster interface {
	BroadcastToArena(arenaID string, message interface{})
}

// ArenaManager owns every active arena and their shared infrastructure
type ArenaManager struct {
	arenas      map[string]*Arena // keyed by arena ID
	rdb         *redis.Client     // Redis client for idle schedule, score mirror and events
	db          *sqlx.DB          // SQL DB for the match ledger
	config      *config.Config    // Application config
	broadcaster Broadcaster       // nil until the WS hub is wired in
	ctx         context.Context   // parent context for arena run loops
	mu          sync.RWMutex
}

// ArenaParams holds the knobs for creating an arena.
type ArenaParams struct {
	Width      float64
	Height     float64
	RosterSize int
	TimeScale  float64
	Seed       int64
}

// ArenaSummary is one row of the arena listing.
type ArenaSummary struct {
	ID          string      `json:"id"`
	Status      ArenaStatus `json:"status"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	RosterSize  int         `json:"roster_size"`
	TimeScale   float64     `json:"time_scale"`
	Spectators  int         `json:"spectators"`
	PointsWhite int         `json:"points_white"`
	PointsBlack int         `json:"points_black"`
	CreatedAt   time.Time   `json:"created_at"`
}

var (
	// Global arena manager instance
	Manager *ArenaManager
)

// InitializeManager initializes the global arena manager and boots the
// default arena from config.
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewArenaManager(ctx, db, rdb, cfg)

	params := ArenaParams{
		Width:      cfg.BoardWidth,
		Height:     cfg.BoardHeight,
		RosterSize: cfg.RosterSize,
		TimeScale:  cfg.TimeScale,
		Seed:       cfg.SimSeed,
	}
	a, err := Manager.CreateArenaWithID(DefaultArenaID, params)
	if err != nil {
		log.Printf("[MANAGER] Failed to create default arena: %v", err)
		return
	}
	if cfg.AutoStart {
		if err := a.Start(); err != nil {
			log.Printf("[MANAGER] Failed to auto-start default arena: %v", err)
		}
	}
}

// NewArenaManager creates a new arena manager
func NewArenaManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *ArenaManager {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ArenaManager{
		arenas: make(map[string]*Arena),
		rdb:    rdb,
		db:     db,
		config: cfg,
		ctx:    ctx,
	}
}

// SetBroadcaster wires in the spectator broadcast sink.
func (gm *ArenaManager) SetBroadcaster(b Broadcaster) {
	gm.mu.Lock()
	gm.broadcaster = b
	gm.mu.Unlock()
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateArenaID generates a unique arena ID
func generateArenaID() string {
	return "arena_" + generateToken(4)
}

// CreateArena creates a new arena with a generated ID and starts its run loop.
func (gm *ArenaManager) CreateArena(params ArenaParams) (*Arena, error) {
	return gm.CreateArenaWithID(generateArenaID(), params)
}

// CreateArenaWithID creates a new arena under the given ID.
func (gm *ArenaManager) CreateArenaWithID(id string, params ArenaParams) (*Arena, error) {
	if params.Width <= 0 || params.Height <= 0 {
		return nil, fmt.Errorf("board dimensions must be positive")
	}
	if params.Width > maxBoardDim || params.Height > maxBoardDim {
		return nil, fmt.Errorf("board dimensions exceed %d", maxBoardDim)
	}

	gm.mu.Lock()
	if _, exists := gm.arenas[id]; exists {
		gm.mu.Unlock()
		return nil, fmt.Errorf("arena %s already exists", id)
	}
	if gm.config != nil && len(gm.arenas) >= gm.config.MaxArenas {
		gm.mu.Unlock()
		return nil, fmt.Errorf("arena limit reached (%d)", gm.config.MaxArenas)
	}

	a := newArena(id, sim.Config{
		Width:      params.Width,
		Height:     params.Height,
		RosterSize: params.RosterSize,
		TimeScale:  params.TimeScale,
		Seed:       params.Seed,
	}, gm)

	runCtx, cancel := context.WithCancel(gm.ctx)
	a.cancel = cancel
	gm.arenas[id] = a
	gm.mu.Unlock()

	go a.Run(runCtx)
	gm.touchArena(id)
	gm.publishEvent(map[string]interface{}{"type": "arena_created", "arena_id": id})
	log.Printf("[MANAGER] Arena %s created (%.0fx%.0f roster=%d)", id, params.Width, params.Height, params.RosterSize)
	return a, nil
}

// GetArena returns the arena with the given ID. An empty ID resolves to the
// default arena.
func (gm *ArenaManager) GetArena(id string) (*Arena, error) {
	if id == "" {
		id = DefaultArenaID
	}
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	a, exists := gm.arenas[id]
	if !exists {
		return nil, fmt.Errorf("arena %s not found", id)
	}
	return a, nil
}

// CloseArena finalizes an arena and removes it from the registry.
func (gm *ArenaManager) CloseArena(id, reason string) error {
	if id == "" {
		id = DefaultArenaID
	}
	gm.mu.Lock()
	a, exists := gm.arenas[id]
	if !exists {
		gm.mu.Unlock()
		return fmt.Errorf("arena %s not found", id)
	}
	delete(gm.arenas, id)
	gm.mu.Unlock()

	a.Close(reason)
	if gm.rdb != nil {
		gm.rdb.ZRem(context.Background(), arenaIdleKey, id)
	}
	gm.publishEvent(map[string]interface{}{
		"type":     "arena_closed",
		"arena_id": id,
		"reason":   reason,
	})
	log.Printf("[MANAGER] Arena %s removed (%s)", id, reason)
	return nil
}

// ListArenas returns a summary of every active arena, sorted by ID.
func (gm *ArenaManager) ListArenas() []ArenaSummary {
	gm.mu.RLock()
	arenas := make([]*Arena, 0, len(gm.arenas))
	for _, a := range gm.arenas {
		arenas = append(arenas, a)
	}
	gm.mu.RUnlock()

	out := make([]ArenaSummary, 0, len(arenas))
	for _, a := range arenas {
		out = append(out, a.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ArenaCount returns the number of active arenas.
func (gm *ArenaManager) ArenaCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.arenas)
}

// GetConfig returns the application config the manager was built with.
func (gm *ArenaManager) GetConfig() *config.Config {
	return gm.config
}

// SpectatorJoined records a WebSocket join for idle tracking.
func (gm *ArenaManager) SpectatorJoined(arenaID string) {
	if a, err := gm.GetArena(arenaID); err == nil {
		n := a.AddSpectator()
		log.Printf("[MANAGER] Spectator joined arena %s (count=%d)", a.ID, n)
	}
	gm.touchArena(arenaID)
}

// SpectatorLeft records a WebSocket disconnect for idle tracking.
func (gm *ArenaManager) SpectatorLeft(arenaID string) {
	if a, err := gm.GetArena(arenaID); err == nil {
		n := a.RemoveSpectator()
		log.Printf("[MANAGER] Spectator left arena %s (count=%d)", a.ID, n)
	}
	gm.touchArena(arenaID)
}

// touchArena pushes the arena's idle deadline forward. The default arena is
// never scheduled and therefore never reaped.
func (gm *ArenaManager) touchArena(id string) {
	if gm.rdb == nil || gm.config == nil || id == DefaultArenaID || id == "" {
		return
	}
	deadline := time.Now().Unix() + int64(gm.config.ArenaIdleSeconds)
	gm.rdb.ZAdd(context.Background(), arenaIdleKey, redis.Z{Score: float64(deadline), Member: id})
}

// Broadcast sends a message to every spectator of an arena.
func (gm *ArenaManager) Broadcast(arenaID string, message interface{}) {
	gm.mu.RLock()
	b := gm.broadcaster
	gm.mu.RUnlock()
	if b == nil {
		return
	}
	b.BroadcastToArena(arenaID, message)
}

// mirrorScore keeps the Redis score hash in sync for external readers.
func (gm *ArenaManager) mirrorScore(arenaID string, white, black int) {
	if gm.rdb == nil {
		return
	}
	gm.rdb.HSet(context.Background(), arenaScorePref+arenaID, "white", white, "black", black)
}

// publishEvent publishes an arena lifecycle event to Redis pub/sub.
func (gm *ArenaManager) publishEvent(payload map[string]interface{}) {
	if gm.rdb == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[MANAGER] Failed to marshal event: %v", err)
		return
	}
	if err := gm.rdb.Publish(context.Background(), arenaEventsChan, b).Err(); err != nil {
		log.Printf("[MANAGER] Failed to publish event: %v", err)
	}
}
