package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	gridRows      = 4
	gridCols      = 4
	tileSize      = 110
	tileGap       = 12
	headerHeight  = 150 // Room for up to nine session stat lines
	screenWidth   = 800
	screenHeight  = 720
	shakeDuration = 400 * time.Millisecond // Mismatch shake
	flashDuration = 500 * time.Millisecond // Match flash
)

var (
	baseURL = "http://localhost:8080"

	boardWidth = gridCols*tileSize + (gridCols-1)*tileGap
	boardLeft  = (screenWidth - boardWidth) / 2
	boardTop   = headerHeight + 20
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// Session colors, one per tab
var sessionColors = []color.RGBA{
	{255, 100, 100, 255}, // Red
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// Face colors by tile value
var valueColors = []color.RGBA{
	{0, 0, 0, 255},
	{231, 76, 60, 255},
	{52, 152, 219, 255},
	{46, 204, 113, 255},
	{241, 196, 15, 255},
	{155, 89, 182, 255},
	{230, 126, 34, 255},
	{26, 188, 156, 255},
	{236, 112, 160, 255},
}

// Tile is one board cell as the server reports it. Value is zero while the
// tile is face down.
type Tile struct {
	Position int  `json:"position"`
	Row      int  `json:"row"`
	Col      int  `json:"col"`
	Value    int  `json:"value,omitempty"`
	FaceUp   bool `json:"face_up"`
	Matched  bool `json:"matched"`
}

// GameState represents the state from the game server
type GameState struct {
	Tiles          []Tile `json:"tiles"`
	Phase          string `json:"phase"`
	Selected       int    `json:"selected"`
	Pending        []int  `json:"pending,omitempty"`
	MatchedPairs   int    `json:"matched_pairs"`
	TotalPairs     int    `json:"total_pairs"`
	Score          int    `json:"score"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	ClockEnabled   bool   `json:"clock_enabled"`
	Moves          int    `json:"moves"`
	Mismatches     int    `json:"mismatches"`
	Won            bool   `json:"won"`
	Message        string `json:"message"`
	ConfigName     string `json:"config_name"`
}

// TileChange is a tile whose visibility changed in an event
type TileChange struct {
	Position int  `json:"position"`
	Value    int  `json:"value,omitempty"`
	FaceUp   bool `json:"face_up"`
	Matched  bool `json:"matched"`
}

// EventData is the engine event carried in a WebSocket message
type EventData struct {
	Type    string       `json:"type"`
	Changes []TileChange `json:"changes,omitempty"`
	Score   int          `json:"score"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string     `json:"session_id"`
	GameState *GameState `json:"game_state,omitempty"`
	Event     string     `json:"event,omitempty"`
	Data      *EventData `json:"data,omitempty"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	configName string
	state      *GameState
	wsConn     *websocket.Conn
	lastUpdate time.Time
	deleted    bool // Server deleted the session; stop polling

	shakeTiles []int     // Mismatched pair being shaken
	shakeStart time.Time // When the mismatch happened
	flashTiles []int     // Pair that just matched
	flashStart time.Time // When the match happened
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	CreatedAt  string     `json:"created_at"`
	GameState  *GameState `json:"game_state"`
}

// ConfigListItem represents a game configuration
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Game represents the desktop game client
type Game struct {
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to play
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableConfigs  []ConfigListItem
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string // config_id for the next new session
}

// NewGame creates a new game instance with initial sessions
func NewGame(sessionIDs []string) *Game {
	g := &Game{
		sessions:         make([]*SessionData, 0),
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen: &WelcomeScreen{
			availableSessions: make([]SessionListItem, 0),
			availableConfigs:  make([]ConfigListItem, 0),
		},
	}

	// If session IDs provided, skip welcome screen and go straight to game
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}

	return g
}

// addSession adds a session to the game, creating one when sessionID is empty
func (g *Game) addSession(sessionID string) {
	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}

	// New tabs reuse the preset of the first session
	if sessionID == "" {
		configID := g.welcomeScreen.newSessionConfig
		if len(g.sessions) > 0 {
			configID = g.sessions[0].configName
		}
		id, err := createSession(configID)
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
		session.sessionID = id
	}

	g.sessions = append(g.sessions, session)

	if err := g.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", session.sessionID, err)
	} else {
		go g.listenWebSocket(session)
	}

	if err := g.fetchSession(session); err != nil {
		log.Printf("Error fetching session %s: %v", session.sessionID, err)
	}
}

// createSession creates a new game session on the server
func createSession(configID string) (string, error) {
	payload := "{}"
	if configID != "" {
		body, err := json.Marshal(map[string]string{"config_id": configID})
		if err != nil {
			return "", err
		}
		payload = string(body)
	}

	resp, err := http.Post(baseURL+"/api/sessions", "application/json", strings.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse session response: %v (body: %s)", err, string(body))
	}

	log.Printf("Created new session: %s (config: %s)", result.ID, configID)
	return result.ID, nil
}

// connectWebSocket establishes WebSocket connection
func (g *Game) connectWebSocket(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return err
	}
	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}
	wsURL := url.URL{Scheme: scheme, Host: base.Host, Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// listenWebSocket applies pushed events, including flip-backs and clock ticks
func (g *Game) listenWebSocket(session *SessionData) {
	defer func() {
		g.stateMutex.Lock()
		if session.wsConn != nil {
			session.wsConn.Close()
			session.wsConn = nil
		}
		g.stateMutex.Unlock()
	}()

	conn := session.wsConn
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		if wsMsg.Event == "session_deleted" {
			log.Printf("Session %s was deleted on the server", session.sessionID)
			g.stateMutex.Lock()
			session.deleted = true
			if session.state != nil {
				session.state.Message = "Session deleted on the server"
			}
			g.stateMutex.Unlock()
			continue
		}

		if wsMsg.GameState == nil {
			continue
		}

		g.stateMutex.Lock()
		session.applyEvent(wsMsg.Event, wsMsg.Data, wsMsg.GameState)
		session.state = wsMsg.GameState
		session.lastUpdate = time.Now()
		g.stateMutex.Unlock()
	}
}

// applyEvent starts the animation that goes with an event
func (s *SessionData) applyEvent(event string, data *EventData, state *GameState) {
	if data == nil {
		return
	}
	var positions []int
	for _, ch := range data.Changes {
		positions = append(positions, ch.Position)
	}

	switch event {
	case "mismatch":
		// The event only carries the second tile; state has the pair
		s.shakeTiles = positions
		if state != nil && len(state.Pending) > 0 {
			s.shakeTiles = state.Pending
		}
		s.shakeStart = time.Now()
	case "match":
		s.flashTiles = positions
		s.flashStart = time.Now()
	case "restart", "new_game":
		s.shakeTiles = nil
		s.flashTiles = nil
	}
}

// fetchSession reads the session, its preset and current state
func (g *Game) fetchSession(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	var info SessionListItem
	if err := getJSON(fmt.Sprintf("%s/api/sessions/%s", baseURL, session.sessionID), &info); err != nil {
		return err
	}

	g.stateMutex.Lock()
	session.sessionID = info.ID
	session.configName = info.ConfigName
	if info.GameState != nil {
		session.state = info.GameState
	}
	session.lastUpdate = time.Now()
	g.stateMutex.Unlock()
	return nil
}

// fetchGameState gets the current game state from the server
func (g *Game) fetchGameState(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	var state GameState
	if err := getJSON(fmt.Sprintf("%s/api/sessions/%s/state", baseURL, session.sessionID), &state); err != nil {
		return err
	}

	g.stateMutex.Lock()
	session.state = &state
	session.lastUpdate = time.Now()
	g.stateMutex.Unlock()
	return nil
}

func getJSON(u string, v interface{}) error {
	resp, err := http.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(body))
	}
	return nil
}

// loadWelcomeData fetches available sessions and configs from server
func (g *Game) loadWelcomeData() {
	ws := g.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	var sessionsResp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	if err := getJSON(baseURL+"/api/sessions?sort=created&order=asc", &sessionsResp); err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.availableSessions = sessionsResp.Sessions
	if ws.cursorPos >= len(ws.availableSessions) {
		ws.cursorPos = len(ws.availableSessions) - 1
	}
	if ws.cursorPos < 0 {
		ws.cursorPos = 0
	}

	var configs []ConfigListItem
	if err := getJSON(baseURL+"/api/configs", &configs); err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		return
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	ws.availableConfigs = configs
}

// createNewSessionFromWelcome creates a new session with selected config
func (g *Game) createNewSessionFromWelcome() error {
	id, err := createSession(g.welcomeScreen.newSessionConfig)
	if err != nil {
		return err
	}

	g.selectedSessions[id] = true
	g.loadWelcomeData()
	return nil
}

// startGameWithSelectedSessions transitions to game screen with selected sessions
func (g *Game) startGameWithSelectedSessions() {
	if len(g.selectedSessions) == 0 {
		g.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	open := make(map[string]bool)
	for _, s := range g.sessions {
		open[s.sessionID] = true
	}

	// Keep the list order so tab numbers match the welcome screen
	for _, item := range g.welcomeScreen.availableSessions {
		if g.selectedSessions[item.ID] && !open[item.ID] && len(g.sessions) < len(sessionColors) {
			g.addSession(item.ID)
		}
	}

	g.currentScreen = ScreenGame
}

// activeSessionData returns the session receiving input, if any
func (g *Game) activeSessionData() *SessionData {
	if len(g.sessions) == 0 {
		return nil
	}
	return g.sessions[g.activeSession]
}

// sendClick clicks a tile in the active session
func (g *Game) sendClick(position int) error {
	session := g.activeSessionData()
	if session == nil {
		return fmt.Errorf("no sessions available")
	}

	payload, err := json.Marshal(map[string]int{"position": position})
	if err != nil {
		return err
	}
	return g.post(session, "click", payload)
}

// sendRestart reshuffles the active session
func (g *Game) sendRestart() error {
	session := g.activeSessionData()
	if session == nil {
		return fmt.Errorf("no sessions available")
	}
	return g.post(session, "restart", []byte("{}"))
}

func (g *Game) post(session *SessionData, action string, payload []byte) error {
	u := fmt.Sprintf("%s/api/sessions/%s/%s", baseURL, session.sessionID, action)
	resp, err := http.Post(u, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed with %d: %s", action, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Without a stream the response is the only way to see the result
	if session.wsConn == nil {
		return g.fetchGameState(session)
	}
	return nil
}

// tileAt maps a screen point to a board position, or -1 between tiles
func tileAt(x, y int) int {
	x -= boardLeft
	y -= boardTop
	if x < 0 || y < 0 {
		return -1
	}
	col, offX := x/(tileSize+tileGap), x%(tileSize+tileGap)
	row, offY := y/(tileSize+tileGap), y%(tileSize+tileGap)
	if col >= gridCols || row >= gridRows || offX >= tileSize || offY >= tileSize {
		return -1
	}
	return row*gridCols + col
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos++
		if ws.cursorPos >= totalItems {
			ws.cursorPos = totalItems - 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos--
		if ws.cursorPos < 0 {
			ws.cursorPos = 0
		}
	}

	// Toggle selection with Space
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if ws.cursorPos >= 0 && ws.cursorPos < totalItems {
			sessionID := ws.availableSessions[ws.cursorPos].ID
			if g.selectedSessions[sessionID] {
				delete(g.selectedSessions, sessionID)
			} else {
				g.selectedSessions[sessionID] = true
			}
		}
	}

	// Cycle through presets with Tab; past the last one means server default
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableConfigs) > 0 {
		currentIdx := -1
		for i, cfg := range ws.availableConfigs {
			if cfg.ConfigID == ws.newSessionConfig {
				currentIdx = i
				break
			}
		}
		currentIdx++
		if currentIdx >= len(ws.availableConfigs) {
			ws.newSessionConfig = ""
		} else {
			ws.newSessionConfig = ws.availableConfigs[currentIdx].ConfigID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.startGameWithSelectedSessions()
	}

	// Back to game screen with Escape (if sessions exist)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
		return nil
	}

	if len(g.sessions) == 0 {
		return nil
	}

	// Poll sessions without a stream; flip-backs and ticks arrive no other way
	for _, session := range g.sessions {
		g.stateMutex.RLock()
		polling := session.wsConn == nil && !session.deleted && (session.state == nil || time.Since(session.lastUpdate) > 250*time.Millisecond)
		g.stateMutex.RUnlock()
		if polling {
			if err := g.fetchGameState(session); err != nil {
				log.Printf("Error fetching state for %s: %v", session.sessionID, err)
			}
		}
	}

	// Session switching with number keys (1-9)
	for k := ebiten.Key1; k <= ebiten.Key9; k++ {
		if inpututil.IsKeyJustPressed(k) {
			idx := int(k - ebiten.Key1)
			if idx < len(g.sessions) {
				g.activeSession = idx
				log.Printf("Switched to session %d: %s", idx+1, g.sessions[idx].sessionID)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) && len(g.sessions) < len(sessionColors) {
		g.addSession("")
		g.activeSession = len(g.sessions) - 1
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.sendRestart(); err != nil {
			log.Printf("Restart failed: %v", err)
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if pos := tileAt(x, y); pos >= 0 {
			if err := g.sendClick(pos); err != nil {
				log.Printf("Click failed: %v", err)
			}
		}
	}

	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the welcome/session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen

	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== MEMORY MATCH - SESSION SELECT ===", 250, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	} else {
		for i, session := range ws.availableSessions {
			cursor := "  "
			if i == ws.cursorPos {
				cursor = "> "
			}

			checkbox := "[ ]"
			if g.selectedSessions[session.ID] {
				checkbox = "[X]"
			}

			line := fmt.Sprintf("%s%s %s | %s", cursor, checkbox, session.ID, session.ConfigName)
			if st := session.GameState; st != nil {
				line += fmt.Sprintf(" | Pairs:%d/%d Score:%d", st.MatchedPairs, st.TotalPairs, st.Score)
				if st.Won {
					line += " WON"
				}
			}

			ebitenutil.DebugPrintAt(screen, line, 20, y)
			y += 15
		}
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "-----------------------------------------", 20, y)
	y += 20

	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Preset: %s", configDisplay), 20, y)
	y += 15

	ebitenutil.DebugPrintAt(screen, "  Available Presets:", 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "> "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s - %s", marker, cfg.ConfigID, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "-----------------------------------------", 20, y)
	y += 20

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", len(g.selectedSessions)), 20, y)
	y += 30

	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	y += 20
	for _, line := range []string{
		"  UP/DOWN  - Navigate sessions",
		"  SPACE    - Toggle session selection",
		"  TAB      - Cycle preset for new session",
		"  N        - Create new session with selected preset",
		"  ENTER    - Start game with selected sessions",
		"  F5       - Refresh session list",
	} {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
	if len(g.sessions) > 0 {
		ebitenutil.DebugPrintAt(screen, "  ESC      - Back to game", 20, y)
	}
}

// drawGameScreen renders the active board and stats for every session
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	g.drawSessionStats(screen)

	active := g.sessions[g.activeSession]
	if active.state == nil {
		ebitenutil.DebugPrintAt(screen, "Loading...", boardLeft, boardTop)
		return
	}

	// Frame in the session color
	frame := sessionColors[g.activeSession%len(sessionColors)]
	ebitenutil.DrawRect(screen,
		float64(boardLeft-6), float64(boardTop-6),
		float64(boardWidth+12), float64(boardWidth+12), frame)
	ebitenutil.DrawRect(screen,
		float64(boardLeft-3), float64(boardTop-3),
		float64(boardWidth+6), float64(boardWidth+6), color.RGBA{20, 20, 30, 255})

	for _, tile := range active.state.Tiles {
		g.drawTile(screen, active, tile)
	}

	// Message below the board
	ebitenutil.DebugPrintAt(screen, active.state.Message, boardLeft, boardTop+boardWidth+15)

	ebitenutil.DebugPrintAt(screen, "Click: Flip | 1-9: Switch | N: New Session | R: Restart | ESC: Menu", 10, screenHeight-20)
}

func (g *Game) drawTile(screen *ebiten.Image, session *SessionData, tile Tile) {
	x := float64(boardLeft + tile.Col*(tileSize+tileGap))
	y := float64(boardTop + tile.Row*(tileSize+tileGap))

	// Mismatch shake, dampening over time
	if contains(session.shakeTiles, tile.Position) {
		if p := time.Since(session.shakeStart).Seconds() / shakeDuration.Seconds(); p < 1 {
			x += 6 * (1 - p) * math.Sin(p*40)
		}
	}

	c := getTileColor(tile)
	if contains(session.flashTiles, tile.Position) {
		if p := time.Since(session.flashStart).Seconds() / flashDuration.Seconds(); p < 1 {
			c = blend(c, color.RGBA{255, 255, 255, 255}, 0.6*(1-p))
		}
	}
	if tile.Position == session.state.Selected {
		ebitenutil.DrawRect(screen, x-3, y-3, tileSize+6, tileSize+6, color.RGBA{255, 255, 255, 255})
	}
	ebitenutil.DrawRect(screen, x, y, tileSize, tileSize, c)

	label := "?"
	if tile.FaceUp || tile.Matched {
		label = fmt.Sprintf("%d", tile.Value)
	}
	ebitenutil.DebugPrintAt(screen, label, int(x)+tileSize/2-3, int(y)+tileSize/2-8)
}

// drawSessionStats draws stats for all sessions in header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	headerY := 5
	for idx, session := range g.sessions {
		y := headerY + idx*15
		ebitenutil.DrawRect(screen, 5, float64(y), 10, 10, sessionColors[idx%len(sessionColors)])

		activeMarker := "   "
		if idx == g.activeSession {
			activeMarker = ">>>"
		}

		connStatus := "POLL"
		if session.wsConn != nil {
			connStatus = "WS"
		}

		info := fmt.Sprintf("%s [%d] %s [%s]", activeMarker, idx+1, session.sessionID, connStatus)
		if st := session.state; st != nil {
			info += fmt.Sprintf(" %s PAIRS:%d/%d SC:%d MV:%d", session.configName, st.MatchedPairs, st.TotalPairs, st.Score, st.Moves)
			if st.ClockEnabled {
				info += fmt.Sprintf(" T:%ds", st.ElapsedSeconds)
			}
			if st.Won {
				info += " WON!"
			}
		}

		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// getTileColor returns the fill for a tile
func getTileColor(tile Tile) color.RGBA {
	switch {
	case tile.Matched:
		return blend(valueColors[tile.Value%len(valueColors)], color.RGBA{60, 60, 60, 255}, 0.5)
	case tile.FaceUp:
		return valueColors[tile.Value%len(valueColors)]
	default:
		return color.RGBA{70, 80, 110, 255} // Face down
	}
}

func blend(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-t) + float64(y)*t)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func main() {
	if u := os.Getenv("MEMORYGAME_URL"); u != "" {
		baseURL = strings.TrimRight(u, "/")
	}

	// Accept multiple session IDs as arguments
	game := NewGame(os.Args[1:])

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Memory Match - Multi-Session Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
