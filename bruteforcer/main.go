package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type Tile struct {
	Position int  `json:"position"`
	Value    int  `json:"value,omitempty"`
	FaceUp   bool `json:"face_up"`
	Matched  bool `json:"matched"`
}

type GameState struct {
	Tiles          []Tile `json:"tiles"`
	Phase          string `json:"phase"`
	Selected       int    `json:"selected"`
	MatchedPairs   int    `json:"matched_pairs"`
	TotalPairs     int    `json:"total_pairs"`
	Score          int    `json:"score"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Moves          int    `json:"moves"`
	Mismatches     int    `json:"mismatches"`
	Won            bool   `json:"won"`
	Message        string `json:"message"`
	ConfigName     string `json:"config_name"`
}

type GameConfig struct {
	FlipBackDelayMs int `json:"flip_back_delay_ms"`
}

type SessionResponse struct {
	ID         string      `json:"id"`
	ConfigName string      `json:"config_name"`
	GameState  *GameState  `json:"game_state"`
	GameConfig *GameConfig `json:"game_config"`
}

type TileChange struct {
	Position int  `json:"position"`
	Value    int  `json:"value,omitempty"`
	FaceUp   bool `json:"face_up"`
	Matched  bool `json:"matched"`
}

type ClickResponse struct {
	Outcome   string       `json:"outcome"`
	Reason    string       `json:"reason,omitempty"`
	Changes   []TileChange `json:"changes,omitempty"`
	Score     int          `json:"score"`
	Phase     string       `json:"phase"`
	Won       bool         `json:"won"`
	GameState *GameState   `json:"game_state"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(configID string) (*SessionResponse, error) {
	var reqBody []byte
	var err error

	if configID != "" {
		reqBody, err = json.Marshal(map[string]string{"config_id": configID})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetSession() (*SessionResponse, error) {
	url := fmt.Sprintf("%s/api/sessions/%s", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get session failed: %s", resp.Status)
	}

	var session SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	return &session, nil
}

func (c *Client) GetState() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/state", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

type RestartResponse struct {
	Message string     `json:"message"`
	State   *GameState `json:"state"`
}

func (c *Client) Restart() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/restart", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("restart: %w", err)
	}
	defer resp.Body.Close()

	var restartResp RestartResponse
	if err := json.NewDecoder(resp.Body).Decode(&restartResp); err != nil {
		return nil, fmt.Errorf("parse restart response: %w", err)
	}

	return restartResp.State, nil
}

func (c *Client) Click(position int) (*ClickResponse, error) {
	body, err := json.Marshal(map[string]int{"position": position})
	if err != nil {
		return nil, fmt.Errorf("marshal click: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/click", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("click: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("click failed: %s - %s", resp.Status, string(msg))
	}

	var clickResp ClickResponse
	if err := json.NewDecoder(resp.Body).Decode(&clickResp); err != nil {
		return nil, fmt.Errorf("parse click response: %w", err)
	}

	return &clickResp, nil
}

// waitForFlipBack polls until the mismatched pair has been hidden again
func (c *Client) waitForFlipBack(delay time.Duration) (*GameState, error) {
	time.Sleep(delay)
	for i := 0; i < 50; i++ {
		state, err := c.GetState()
		if err != nil {
			return nil, err
		}
		if state.Phase != "resolving_mismatch" {
			return state, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil, fmt.Errorf("mismatch never resolved")
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Game preset (timed, relaxed, speedrun)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	games := flag.Int("games", 1, "Games to play")
	maxClicks := flag.Int("max-clicks", 500, "Maximum clicks per game")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between clicks in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	var session *SessionResponse
	var err error

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := ""

	if *continueSession != "" {
		savedSessionID = *continueSession
	} else if data, err := os.ReadFile(sessionFile); err == nil {
		savedSessionID = string(bytes.TrimSpace(data))
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		session, err = client.GetSession()
		if err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			log.Printf("Creating new session...")
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		session, err = client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s (%s)", client.sessionID, session.ConfigName)

		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	flipBack := 750 * time.Millisecond
	if session.GameConfig != nil && session.GameConfig.FlipBackDelayMs > 0 {
		flipBack = time.Duration(session.GameConfig.FlipBackDelayMs) * time.Millisecond
	}

	strategy := NewMemoryStrategy()
	wins := 0

	for game := 1; game <= *games; game++ {
		state, err := client.Restart()
		if err != nil {
			log.Fatalf("Failed to restart game: %v", err)
		}
		strategy.Reset()

		log.Printf("\n=== 🎮 Game %d/%d ===", game, *games)

		clicks := 0
		for !state.Won && clicks < *maxClicks {
			pos := strategy.NextClick(state)
			if pos < 0 {
				log.Printf("⚠️  No tile left to click")
				break
			}

			res, err := client.Click(pos)
			if err != nil {
				log.Fatalf("Click failed: %v", err)
			}
			clicks++
			strategy.Observe(res.Changes)
			state = res.GameState

			if *verbose {
				log.Printf("click %d -> %s (score %d, pairs %d/%d)",
					pos, res.Outcome, res.Score, state.MatchedPairs, state.TotalPairs)
			}

			if res.Outcome == "mismatch" {
				state, err = client.waitForFlipBack(flipBack)
				if err != nil {
					log.Fatalf("Waiting for flip-back: %v", err)
				}
			}

			if *delayMs > 0 {
				time.Sleep(time.Duration(*delayMs) * time.Millisecond)
			}
		}

		log.Printf("Game %d: Clicks=%d, Score=%d, Mismatches=%d, Time=%ds",
			game, clicks, state.Score, state.Mismatches, state.ElapsedSeconds)
		if state.Won {
			wins++
		}
	}

	log.Printf("\n🏁 Won %d/%d games. Session: %s", wins, *games, client.sessionID)
	if wins != *games {
		os.Exit(1)
	}
}
