package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/api/handlers"
	"github.com/cbodonnell/dirtydishes/pkg/api/middleware"
	"github.com/cbodonnell/dirtydishes/pkg/clock"
	"github.com/cbodonnell/dirtydishes/pkg/game"
	"github.com/cbodonnell/dirtydishes/pkg/game/constants"
	"github.com/cbodonnell/dirtydishes/pkg/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestClient(t *testing.T) (*testClient, *sessions.SessionManager, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Unix(0, 0))
	sessionManager := sessions.NewSessionManager(sessions.NewSessionManagerOptions{
		Clock: fake,
		NewKitchen: func(sessionID string) *game.KitchenManager {
			return game.NewKitchenManager(game.NewKitchenManagerOptions{
				SessionID:        sessionID,
				Clock:            fake,
				GameLoopInterval: time.Millisecond,
				Settings:         game.DefaultSettings(),
			})
		},
	})
	t.Cleanup(sessionManager.CloseAll)

	router := NewRouter(NewAPIServerOptions{SessionManager: sessionManager})
	return &testClient{t: t, handler: router}, sessionManager, fake
}

func (c *testClient) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			c.cookie = cookie
		}
	}
	return rec
}

func (c *testClient) fetchState() (*handlers.StateResponse, error) {
	rec := c.do(http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", rec.Code)
	}
	resp := &handlers.StateResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// waitForState polls until the kitchen loop has published a state that
// satisfies cond.
func (c *testClient) waitForState(cond func(*handlers.StateResponse) bool) *handlers.StateResponse {
	c.t.Helper()
	var last *handlers.StateResponse
	require.Eventually(c.t, func() bool {
		resp, err := c.fetchState()
		if err != nil {
			return false
		}
		last = resp
		return cond(resp)
	}, 5*time.Second, 5*time.Millisecond)
	return last
}

func TestRouter_IndexStartsSession(t *testing.T) {
	c, sessionManager, _ := newTestClient(t)

	rec := c.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookie)
	assert.Equal(t, 1, sessionManager.Count())

	body := rec.Body.String()
	for _, area := range []string{"Pile", "Hand", "Sink", "Drying Rack", "Cupboard"} {
		assert.Contains(t, body, area)
	}

	// the same cookie keeps the same session
	c.do(http.MethodGet, "/", "")
	assert.Equal(t, 1, sessionManager.Count())
}

func TestRouter_WashAndPutAway(t *testing.T) {
	c, _, fake := newTestClient(t)

	s := c.waitForState(func(s *handlers.StateResponse) bool { return len(s.State.Pile) == 1 })
	dishID := s.State.Pile[0].ID

	rec := c.do(http.MethodPost, "/pile/"+dishID+"/pick-up", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = c.do(http.MethodPost, "/hand/wash", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	s = c.waitForState(func(s *handlers.StateResponse) bool { return s.State.Sink != nil })
	assert.False(t, s.State.CanDry)

	// drying too early is rejected
	rec = c.do(http.MethodPost, "/api/actions", `{"action":"dry"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	fake.Advance(constants.WashTime)
	c.waitForState(func(s *handlers.StateResponse) bool { return s.State.CanDry })

	rec = c.do(http.MethodPost, "/sink/dry", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.do(http.MethodPost, "/rack/"+dishID+"/put-away", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	s = c.waitForState(func(s *handlers.StateResponse) bool { return s.State.Cupboard == 1 })
	assert.Empty(t, s.State.Rack)
	assert.Nil(t, s.State.Sink)
}

func TestRouter_PostAction(t *testing.T) {
	c, _, _ := newTestClient(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantNotice string
	}{
		{
			name:       "rejected action",
			body:       `{"action":"wash"}`,
			wantStatus: http.StatusConflict,
			wantNotice: constants.NoticeHandEmpty,
		},
		{
			name:       "accepted action",
			body:       `{"action":"pick_up","index":0}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed body",
			body:       `{"action":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "system action",
			body:       `{"action":"spawn"}`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(http.MethodPost, "/api/actions", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusBadRequest {
				return
			}
			resp := &handlers.ActionResponse{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), resp))
			assert.Equal(t, tt.wantStatus == http.StatusOK, resp.Accepted)
			if tt.wantNotice != "" {
				assert.Equal(t, tt.wantNotice, resp.Notice)
				assert.NotEmpty(t, resp.Reason)
			}
		})
	}
}

func TestRouter_ResetSession(t *testing.T) {
	c, sessionManager, _ := newTestClient(t)

	c.do(http.MethodGet, "/", "")
	require.NotNil(t, c.cookie)
	oldID := c.cookie.Value

	rec := c.do(http.MethodPost, "/session/reset", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotEqual(t, oldID, c.cookie.Value)

	_, err := sessionManager.Get(oldID)
	assert.True(t, sessions.IsNotFound(err))
	assert.Equal(t, 1, sessionManager.Count())
}

func TestRouter_HealthAndVersion(t *testing.T) {
	c, _, _ := newTestClient(t)

	rec := c.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := &handlers.HealthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), health))
	assert.Equal(t, "ok", health.Status)
	assert.Nil(t, c.cookie, "health checks must not open sessions")

	rec = c.do(http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}
