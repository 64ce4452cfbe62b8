package engine

import "time"

const (
	// Grid dimensions are fixed; presets change rules, never the board shape.
	GridRows  = 4
	GridCols  = 4
	TileCount = GridRows * GridCols
	PairCount = TileCount / 2

	// NoSelection marks an empty selection slot.
	NoSelection = -1

	DefaultMatchBonus      = 10
	DefaultMismatchPenalty = 1
	DefaultFlipBackDelay   = 750 * time.Millisecond
	ClockInterval          = time.Second

	// Validation constants
	MaxMatchBonus      = 1000
	MaxMismatchPenalty = 1000
	MaxFlipBackDelayMs = 10000
)

// Phase is the state of the selection machine
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseOneSelected       Phase = "one_selected"
	PhaseResolvingMismatch Phase = "resolving_mismatch"
	PhaseWon               Phase = "won"
)

// Tile represents a single grid cell
type Tile struct {
	Value   int  `json:"value"`
	FaceUp  bool `json:"face_up"`
	Matched bool `json:"matched"`
}

// Board is the ordered tile sequence; the index is the grid position
type Board []Tile

// GameConfig represents a rule preset loaded from JSON
type GameConfig struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	MatchBonus      int    `json:"match_bonus"`
	MismatchPenalty int    `json:"mismatch_penalty"`
	FlipBackDelayMs int    `json:"flip_back_delay_ms"`
	EnableClock     bool   `json:"enable_clock"`
	Messages        struct {
		Welcome  string `json:"welcome"`
		Selected string `json:"selected"`
		Match    string `json:"match"`
		Mismatch string `json:"mismatch"`
		FlipBack string `json:"flip_back"`
		Victory  string `json:"victory"`
	} `json:"messages"`
}

// FlipBackDelay returns the configured delay as a duration
func (c *GameConfig) FlipBackDelay() time.Duration {
	if c == nil || c.FlipBackDelayMs <= 0 {
		return DefaultFlipBackDelay
	}
	return time.Duration(c.FlipBackDelayMs) * time.Millisecond
}

// TileView is the client-facing tile. Value is zero while the tile is face down.
type TileView struct {
	Position int  `json:"position"`
	Row      int  `json:"row"`
	Col      int  `json:"col"`
	Value    int  `json:"value,omitempty"`
	FaceUp   bool `json:"face_up"`
	Matched  bool `json:"matched"`
}

// GameState is a snapshot of a session, safe to hand to renderers
type GameState struct {
	Tiles          []TileView `json:"tiles"`
	Phase          Phase      `json:"phase"`
	Selected       int        `json:"selected"`
	Pending        []int      `json:"pending,omitempty"`
	MatchedPairs   int        `json:"matched_pairs"`
	TotalPairs     int        `json:"total_pairs"`
	Score          int        `json:"score"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	ClockEnabled   bool       `json:"clock_enabled"`
	Moves          int        `json:"moves"`
	Mismatches     int        `json:"mismatches"`
	Won            bool       `json:"won"`
	Message        string     `json:"message"`
	ConfigName     string     `json:"config_name"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// Outcome classifies what a click did
type Outcome string

const (
	OutcomeIgnored  Outcome = "ignored"
	OutcomeSelected Outcome = "selected"
	OutcomeMatch    Outcome = "match"
	OutcomeMismatch Outcome = "mismatch"
	OutcomeFlipBack Outcome = "flip_back"
)

// TileChange describes a visibility change for rendering
type TileChange struct {
	Position int  `json:"position"`
	Value    int  `json:"value,omitempty"`
	FaceUp   bool `json:"face_up"`
	Matched  bool `json:"matched"`
}

// ClickResult is returned by Click and OnMismatchTimerFired
type ClickResult struct {
	Outcome Outcome      `json:"outcome"`
	Reason  string       `json:"reason,omitempty"` // set when Outcome is ignored
	Changes []TileChange `json:"changes,omitempty"`
	Score   int          `json:"score"`
	Phase   Phase        `json:"phase"`
	Won     bool         `json:"won"`
}

// Accepted reports whether the click changed state
func (r ClickResult) Accepted() bool {
	return r.Outcome != OutcomeIgnored
}

// EventType names engine notifications
type EventType string

const (
	EventNewGame  EventType = "new_game"
	EventRestart  EventType = "restart"
	EventSelected EventType = "selected"
	EventMatch    EventType = "match"
	EventMismatch EventType = "mismatch"
	EventFlipBack EventType = "flip_back"
	EventTick     EventType = "tick"
	EventWon      EventType = "won"
)

// Event is emitted to the consumer for every state change, including the
// ones driven by timers rather than clicks.
type Event struct {
	Type           EventType    `json:"type"`
	Changes        []TileChange `json:"changes,omitempty"`
	Score          int          `json:"score"`
	ElapsedSeconds int          `json:"elapsed_seconds"`
	MatchedPairs   int          `json:"matched_pairs"`
	Message        string       `json:"message,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

// Ignore reasons
const (
	ReasonOutOfRange = "position out of range"
	ReasonGameWon    = "game already won"
	ReasonMatched    = "tile already matched"
	ReasonSelected   = "tile already selected"
	ReasonResolving  = "mismatch is resolving"
	ReasonNoMismatch = "no mismatch pending"
)
