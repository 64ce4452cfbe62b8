package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/loop"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	ClickFunc   func(ctx context.Context, sessionID string, position int) (*service.ClickResponse, error)
	RestartFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{
		ID:         "ab12",
		ConfigName: configName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "timed",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Click(ctx context.Context, sessionID string, position int) (*service.ClickResponse, error) {
	if m.ClickFunc != nil {
		return m.ClickFunc(ctx, sessionID, position)
	}
	return &service.ClickResponse{
		ClickResult: engine.ClickResult{Outcome: engine.OutcomeSelected, Phase: engine.PhaseOneSelected},
		Position:    position,
		GameState:   &engine.GameState{},
	}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return &engine.GameState{Phase: engine.PhaseIdle}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{
		Name:        configName,
		Description: "Test config",
	}, nil
}

// fakeHub records upgrade requests instead of upgrading
type fakeHub struct {
	sessions []string
	deleted  []string
}

func (h *fakeHub) SessionDeleted(sessionID string) {
	h.deleted = append(h.deleted, sessionID)
}

func (h *fakeHub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	h.sessions = append(h.sessions, sessionID)
	w.WriteHeader(http.StatusSwitchingProtocols)
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, &fakeHub{})
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		rawBody        string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "" {
						t.Errorf("Expected empty config name, got %s", configName)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: "timed"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with config_id",
			requestBody: map[string]string{"config_id": "relaxed"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "cd34", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ConfigName != "relaxed" {
					t.Errorf("Expected config name 'relaxed', got %s", resp.ConfigName)
				}
			},
		},
		{
			name:        "Deprecated config_name still accepted",
			requestBody: map[string]string{"config_name": "relaxed"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "relaxed" {
						t.Errorf("Expected config name 'relaxed', got %s", configName)
					}
					return &service.SessionInfo{ID: "cd34", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Malformed body",
			rawBody:        "{",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "nightmare"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config '%s': %w", configName, service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)
			if tt.rawBody != "" {
				req = httptest.NewRequest("POST", "/api/sessions", strings.NewReader(tt.rawBody))
			}

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := []*service.SessionInfo{
		{ID: "a", CreatedAt: now.Add(-3 * time.Minute), LastAccessedAt: now.Add(-1 * time.Minute)},
		{ID: "b", CreatedAt: now.Add(-2 * time.Minute), LastAccessedAt: now.Add(-3 * time.Minute)},
		{ID: "c", CreatedAt: now.Add(-1 * time.Minute), LastAccessedAt: now.Add(-2 * time.Minute)},
	}

	tests := []struct {
		name      string
		query     string
		wantOrder []string
		wantTotal int
	}{
		{"default sorts by access desc", "", []string{"a", "c", "b"}, 3},
		{"created asc", "?sort=created&order=asc", []string{"a", "b", "c"}, 3},
		{"created desc with limit", "?sort=created&limit=2", []string{"c", "b"}, 3},
		{"invalid limit ignored", "?limit=zero", []string{"a", "c", "b"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
					out := make([]*service.SessionInfo, len(sessions))
					copy(out, sessions)
					return out, nil
				},
			}
			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.wantTotal {
				t.Errorf("Expected total %d, got %d", tt.wantTotal, resp.Total)
			}
			if resp.Count != len(tt.wantOrder) {
				t.Fatalf("Expected count %d, got %d", len(tt.wantOrder), resp.Count)
			}
			for i, id := range tt.wantOrder {
				if resp.Sessions[i].ID != id {
					t.Errorf("sessions[%d] = %s, want %s", i, resp.Sessions[i].ID, id)
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		err            error
		expectedStatus int
	}{
		{"existing session", "ab12", nil, http.StatusOK},
		{"missing session", "zzzz", fmt.Errorf("session zzzz: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{"stopped loop", "ab12", fmt.Errorf("read state: %w", loop.ErrStopped), http.StatusNotFound},
		{"cancelled", "ab12", context.Canceled, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.SessionInfo{ID: sessionID}, nil
				},
			}
			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/"+tt.sessionID, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	deleted := ""
	mockService := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "gone" {
				return service.ErrSessionNotFound
			}
			deleted = sessionID
			return nil
		},
	}
	hub := &fakeHub{}
	server := NewServer(mockService, hub)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if deleted != "ab12" {
		t.Errorf("Expected ab12 to be deleted, got %q", deleted)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/gone", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	if len(hub.deleted) != 1 || hub.deleted[0] != "ab12" {
		t.Errorf("Expected hub to hear about ab12 only, got %v", hub.deleted)
	}
}

func TestClick(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		rawBody        string
		clickErr       error
		expectedStatus int
		expectedPos    int
	}{
		{"position", map[string]int{"position": 5}, "", nil, http.StatusOK, 5},
		{"position zero", map[string]int{"position": 0}, "", nil, http.StatusOK, 0},
		{"row and col", map[string]int{"row": 2, "col": 3}, "", nil, http.StatusOK, 11},
		{"off-grid row and col", map[string]int{"row": 9, "col": 0}, "", nil, http.StatusOK, -1},
		{"out of range passes through", map[string]int{"position": 40}, "", nil, http.StatusOK, 40},
		{"missing position", map[string]int{"row": 1}, "", nil, http.StatusBadRequest, 0},
		{"malformed body", nil, "not json", nil, http.StatusBadRequest, 0},
		{"missing session", map[string]int{"position": 1}, "", service.ErrSessionNotFound, http.StatusNotFound, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockService := &MockGameService{
				ClickFunc: func(ctx context.Context, sessionID string, position int) (*service.ClickResponse, error) {
					called = true
					if position != tt.expectedPos {
						t.Errorf("Expected position %d, got %d", tt.expectedPos, position)
					}
					if tt.clickErr != nil {
						return nil, tt.clickErr
					}
					return &service.ClickResponse{
						ClickResult: engine.ClickResult{Outcome: engine.OutcomeSelected, Score: 0},
						Position:    position,
						GameState:   &engine.GameState{},
					}, nil
				},
			}
			server := setupTestServer(mockService)

			req := makeRequest("POST", "/api/sessions/ab12/click", tt.body)
			if tt.rawBody != "" {
				req = httptest.NewRequest("POST", "/api/sessions/ab12/click", strings.NewReader(tt.rawBody))
			}
			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusBadRequest && called {
				t.Error("Service should not be called for a bad request")
			}
		})
	}
}

func TestRestart(t *testing.T) {
	mockService := &MockGameService{
		RestartFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID != "ab12" {
				return nil, service.ErrSessionNotFound
			}
			return &engine.GameState{Phase: engine.PhaseIdle, Message: "Find all 8 pairs!"}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/restart", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State == nil || resp.State.Phase != engine.PhaseIdle {
		t.Errorf("Expected idle state, got %+v", resp.State)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/nope/restart", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetGameState(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return &engine.GameState{Score: 17, TotalPairs: engine.PairCount}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var state engine.GameState
	parseResponse(t, w, &state)
	if state.Score != 17 {
		t.Errorf("Expected score 17, got %d", state.Score)
	}
}

func TestConfigs(t *testing.T) {
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{
				service.NewConfigInfo("timed", "", engine.TimedConfig()),
			}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "relaxed" {
				return nil, service.ErrConfigNotFound
			}
			return engine.RelaxedConfig(), nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
	var infos []*service.ConfigInfo
	parseResponse(t, w, &infos)
	if len(infos) != 1 || infos[0].ConfigID != "timed" {
		t.Errorf("Unexpected configs: %+v", infos)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/relaxed.json", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs/other", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 from /healthz, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "memorygame_active_sessions") {
		t.Error("Expected game collectors in /metrics output")
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
		expectedID     string
	}{
		{
			name:           "Missing session parameter",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Valid session uses canonical ID",
			queryParams: "?session=AB12",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "ab12"}, nil
				}
			},
			expectedStatus: http.StatusSwitchingProtocols,
			expectedID:     "ab12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			hub := &fakeHub{}
			server := NewServer(mockService, hub)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedID != "" && (len(hub.sessions) != 1 || hub.sessions[0] != tt.expectedID) {
				t.Errorf("Expected hub to serve %s, got %v", tt.expectedID, hub.sessions)
			}
		})
	}

	t.Run("nil hub disables websocket", func(t *testing.T) {
		server := NewServer(&MockGameService{}, nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest("GET", "/ws?session=ab12", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

// TestEndToEnd drives the real service stack over HTTP
func TestEndToEnd(t *testing.T) {
	configs, err := config.NewManager("")
	if err != nil {
		t.Fatalf("config.NewManager() error = %v", err)
	}
	sessions := session.NewManager(session.WithEngineOptions(engine.WithBoardFunc(func() engine.Board {
		b, _ := engine.NewBoardFromValues([]int{1, 2, 1, 2, 3, 4, 3, 4, 5, 6, 5, 6, 7, 8, 7, 8})
		return b
	})))
	defer sessions.Shutdown()

	ts := httptest.NewServer(NewServer(service.NewGameService(sessions, configs), nil))
	defer ts.Close()

	post := func(path string, body interface{}, target interface{}) int {
		data, _ := json.Marshal(body)
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		defer resp.Body.Close()
		if target != nil {
			json.NewDecoder(resp.Body).Decode(target)
		}
		return resp.StatusCode
	}

	var info service.SessionInfo
	if code := post("/api/sessions", map[string]string{"config_id": "relaxed"}, &info); code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", code)
	}

	var click service.ClickResponse
	post("/api/sessions/"+info.ID+"/click", map[string]int{"position": 0}, &click)
	if click.Outcome != engine.OutcomeSelected {
		t.Errorf("Expected selected, got %s", click.Outcome)
	}
	post("/api/sessions/"+info.ID+"/click", map[string]int{"position": 2}, &click)
	if click.Outcome != engine.OutcomeMatch || click.Score != 10 {
		t.Errorf("Expected match with score 10, got %s/%d", click.Outcome, click.Score)
	}

	// Face-down values stay hidden in the state payload
	resp, err := http.Get(ts.URL + "/api/sessions/" + strings.ToUpper(info.ID) + "/state")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	var state engine.GameState
	json.NewDecoder(resp.Body).Decode(&state)
	resp.Body.Close()
	if state.Tiles[1].Value != 0 || state.Tiles[0].Value != 1 {
		t.Errorf("Unexpected tile values: %+v %+v", state.Tiles[0], state.Tiles[1])
	}

	req, _ := http.NewRequest("DELETE", ts.URL+"/api/sessions/"+info.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()

	if code := post("/api/sessions/"+info.ID+"/click", map[string]int{"position": 1}, nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", code)
	}
}
