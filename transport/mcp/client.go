package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Match Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find all 8 pairs on a 4x4 board of face-down tiles. Click two tiles per turn;
equal values stay up and score, different values flip back after a short delay
and cost points.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get the board, score and clock
- click_tile: Reveal a tile by position (0-15) or row/col - requires intent explanation
- restart_game: Reshuffle and start over
- list_configs: List available presets
- game_instructions: Get the full rules and strategy notes

NOTE: The 'intent' parameter on click_tile serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use, e.g. timed or relaxed (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score, matched pairs and clock",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "click_tile",
		Description: "Reveal a tile. Give either position (0-15, row-major) or row and col (0-3).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"position": map[string]interface{}{
					"type":        "integer",
					"description": "Board position, row*4 + col",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based), used with col when position is omitted",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based), used with row when position is omitted",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why this tile (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleClickTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Reshuffle the board and reset score and clock",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// clickPosition resolves position, or row and col, from tool arguments
func clickPosition(args map[string]interface{}) (int, error) {
	if pos, ok := intArg(args, "position"); ok {
		return pos, nil
	}
	row, hasRow := intArg(args, "row")
	col, hasCol := intArg(args, "col")
	if hasRow && hasCol {
		return engine.CellToPosition(row, col), nil
	}
	return 0, fmt.Errorf("position or row and col required")
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		line := fmt.Sprintf("- %s (Config: %s, Created: %s", s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
		if s.GameState != nil {
			line += fmt.Sprintf(", Pairs: %d/%d, Score: %d", s.GameState.MatchedPairs, s.GameState.TotalPairs, s.GameState.Score)
		}
		result += line + ")\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleClickTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	pos, err := clickPosition(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.ClickResponse
	err = c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/click", sessionID), map[string]int{"position": pos}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatClickResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/restart", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message + "\n"
	if response.State != nil {
		result += "\n" + formatGameState(response.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Configurations (%d):\n\n", len(configs))
	for _, cfg := range configs {
		clock := "untimed"
		if cfg.EnableClock {
			clock = "timed"
		}
		fmt.Fprintf(&b, "- %s: %s\n  +%d per match, -%d per mismatch, flip-back %dms, %s\n",
			cfg.ConfigID, cfg.Description, cfg.MatchBonus, cfg.MismatchPenalty, cfg.FlipBackDelayMs, clock)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `Memory Match Game - Complete Instructions

GAME OBJECTIVE:
Turn up all 8 pairs of matching tiles on a 4x4 board in as few mistakes as possible.

BOARD LAYOUT:
Positions are numbered 0-15 in row-major order: position = row*4 + col.

       col0 col1 col2 col3
  row0   0    1    2    3
  row1   4    5    6    7
  row2   8    9   10   11
  row3  12   13   14   15

BOARD LEGEND (game_state output):
- ??  : face-down tile, value hidden
- n   : face-up tile showing value n
- (n) : matched tile, stays face up for the rest of the game

TURN SEQUENCE:
1. Click a face-down tile. It turns face up and becomes your selection.
2. Click a second face-down tile.
   - Same value: both are matched and you gain the match bonus.
   - Different value: both stay visible briefly, then flip back
     and you lose the mismatch penalty.
3. While a mismatched pair is flipping back, further clicks are ignored.

IGNORED CLICKS (no penalty, reason is reported):
- Clicking a matched tile
- Clicking the tile already selected
- Clicking during the flip-back delay
- Clicking after the game is won
- Positions outside 0-15

SCORING:
- Default preset (timed): +10 per match, -1 per mismatch, clock running
- relaxed: +10 per match, -2 per mismatch, no clock
- Score can go negative. Use list_configs for every preset.

AI AGENTS - STRATEGY:
- Keep a memory of every value you have seen and where.
- When the first tile of a turn shows a value you already saw elsewhere,
  click that known location next for a guaranteed match.
- Otherwise reveal an unseen tile; if it matches nothing known, it still
  teaches you a value for later.
- After a mismatch, call game_state once the flip-back delay passes
  before clicking again.

VICTORY CONDITIONS:
The game is won when all 8 pairs are matched. The clock stops and the
final score is reported.

Good luck and sharp memory!`

// Formatters

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast Accessed: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return result
}

// formatBoard renders the 4x4 grid with row and column labels
func formatBoard(tiles []engine.TileView) string {
	var b strings.Builder
	b.WriteString("      ")
	for col := 0; col < engine.GridCols; col++ {
		fmt.Fprintf(&b, "c%-4d", col)
	}
	b.WriteString("\n")

	for row := 0; row < engine.GridRows; row++ {
		fmt.Fprintf(&b, "r%d   ", row)
		for col := 0; col < engine.GridCols; col++ {
			pos := engine.CellToPosition(row, col)
			cell := "??"
			if pos < len(tiles) {
				cell = tileToken(tiles[pos])
			}
			fmt.Fprintf(&b, " %-4s", cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func tileToken(t engine.TileView) string {
	switch {
	case t.Matched:
		return fmt.Sprintf("(%d)", t.Value)
	case t.FaceUp:
		return fmt.Sprintf("%d", t.Value)
	default:
		return "??"
	}
}

func formatGameState(state *engine.GameState) string {
	var b strings.Builder

	b.WriteString(formatBoard(state.Tiles))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Pairs: %d/%d\n", state.MatchedPairs, state.TotalPairs)
	fmt.Fprintf(&b, "Score: %d\n", state.Score)
	fmt.Fprintf(&b, "Moves: %d (mismatches: %d)\n", state.Moves, state.Mismatches)
	if state.ClockEnabled {
		fmt.Fprintf(&b, "Time: %ds\n", state.ElapsedSeconds)
	}

	switch state.Phase {
	case engine.PhaseOneSelected:
		fmt.Fprintf(&b, "Selected: position %d\n", state.Selected)
	case engine.PhaseResolvingMismatch:
		fmt.Fprintf(&b, "Flipping back: positions %v\n", state.Pending)
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", state.Message)
	}
	if state.Won {
		b.WriteString("\n🎉 VICTORY!\n")
	}

	return b.String()
}

func formatClickResult(result *service.ClickResponse) string {
	var b strings.Builder

	switch result.Outcome {
	case engine.OutcomeSelected:
		fmt.Fprintf(&b, "Revealed position %d: %d. Pick a second tile.\n", result.Position, revealedValue(result))
	case engine.OutcomeMatch:
		fmt.Fprintf(&b, "✓ Match at position %d: %d\n", result.Position, revealedValue(result))
	case engine.OutcomeMismatch:
		fmt.Fprintf(&b, "✗ No match at position %d: %d. Both tiles flip back shortly.\n", result.Position, revealedValue(result))
	case engine.OutcomeIgnored:
		fmt.Fprintf(&b, "Click ignored: %s\n", result.Reason)
	default:
		fmt.Fprintf(&b, "%s\n", result.Outcome)
	}

	if result.GameState != nil {
		b.WriteString("\n")
		b.WriteString(formatGameState(result.GameState))
	}
	return b.String()
}

// revealedValue finds the value shown at the clicked position
func revealedValue(result *service.ClickResponse) int {
	for _, ch := range result.Changes {
		if ch.Position == result.Position {
			return ch.Value
		}
	}
	return 0
}
