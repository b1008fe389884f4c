package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/api/middleware"
	"github.com/cbodonnell/dirtydishes/pkg/game"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
	"github.com/cbodonnell/dirtydishes/pkg/sessions"
	"github.com/cbodonnell/dirtydishes/pkg/version"
	"github.com/gorilla/mux"
)

// DispatchTimeout bounds how long a request waits for its action to be applied.
const DispatchTimeout = 5 * time.Second

// ActionFromRequest builds the player action a browser form asks for.
type ActionFromRequest func(r *http.Request) types.Action

func PickUpFromPath(r *http.Request) types.Action {
	return types.PickUpAction{DishID: mux.Vars(r)["dishID"]}
}

func WashFromPath(*http.Request) types.Action {
	return types.WashAction{}
}

func DryFromPath(*http.Request) types.Action {
	return types.DryAction{}
}

func PutAwayFromPath(r *http.Request) types.Action {
	return types.PutAwayAction{DishID: mux.Vars(r)["dishID"]}
}

func HandleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		state, err := session.Kitchen.Snapshot(r.Context())
		if err != nil {
			log.Error("failed to get kitchen state: %v", err)
			http.Error(w, "Failed to get kitchen state", http.StatusInternalServerError)
			return
		}

		view := newKitchenView(session.ID, state, session.Kitchen.Rules(), version.Get())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, view); err != nil {
			log.Error("failed to render kitchen: %v", err)
		}
	}
}

// HandleFormAction applies a player action and sends the browser back to the
// kitchen. A rejected action shows up as the notice on the next render.
func HandleFormAction(newAction ActionFromRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		if _, err := dispatch(r.Context(), session, newAction(r)); err != nil {
			writeDispatchError(w, err)
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// HandleResetSession tears down the caller's kitchen and starts a new one.
func HandleResetSession(sessionManager *sessions.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		if err := sessionManager.Close(session.ID); err != nil && !sessions.IsNotFound(err) {
			log.Error("failed to close session: %v", err)
			http.Error(w, "Failed to close session", http.StatusInternalServerError)
			return
		}

		newSession, err := sessionManager.Create()
		if err != nil {
			log.Error("failed to create session: %v", err)
			http.Error(w, "Failed to create session", http.StatusServiceUnavailable)
			return
		}

		middleware.SetSessionCookie(w, newSession.ID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

type StateResponse struct {
	SessionID  string              `json:"sessionID"`
	State      *types.KitchenState `json:"state"`
	PileCounts []types.DishCount   `json:"pileCounts"`
}

func HandleGetState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		state, err := session.Kitchen.Snapshot(r.Context())
		if err != nil {
			log.Error("failed to get kitchen state: %v", err)
			http.Error(w, "Failed to get kitchen state", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, &StateResponse{
			SessionID:  session.ID,
			State:      state,
			PileCounts: state.PileCounts(),
		})
	}
}

type ActionResponse struct {
	Accepted bool                `json:"accepted"`
	Reason   string              `json:"reason,omitempty"`
	Notice   string              `json:"notice,omitempty"`
	State    *types.KitchenState `json:"state"`
}

// HandlePostAction applies a JSON encoded player action. Rejected actions
// answer 409 with the notice they raised.
func HandlePostAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		clientAction := &messages.ClientAction{}
		if err := json.NewDecoder(r.Body).Decode(clientAction); err != nil {
			http.Error(w, "Failed to decode action", http.StatusBadRequest)
			return
		}
		action, err := clientAction.ToAction()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := dispatch(r.Context(), session, action)
		if err != nil {
			writeDispatchError(w, err)
			return
		}

		resp := &ActionResponse{
			Accepted: result.Accepted,
			Notice:   result.State.Notice,
			State:    result.State,
		}
		status := http.StatusOK
		if !result.Accepted {
			status = http.StatusConflict
			if result.Reason != nil {
				resp.Reason = result.Reason.Error()
			}
		}
		writeJSON(w, status, resp)
	}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func HandleHealthz(sessionManager *sessions.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, &HealthResponse{
			Status:   "ok",
			Sessions: sessionManager.Count(),
		})
	}
}

func HandleVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": version.Get()})
	}
}

func sessionFromRequest(w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		log.Error("failed to get session from context")
		http.Error(w, "Failed to get session from context", http.StatusInternalServerError)
		return nil, false
	}
	return session, true
}

func dispatch(ctx context.Context, session *sessions.Session, action types.Action) (types.ActionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DispatchTimeout)
	defer cancel()
	return session.Kitchen.Dispatch(ctx, action)
}

func writeDispatchError(w http.ResponseWriter, err error) {
	if errors.Is(err, game.ErrKitchenClosed) {
		http.Error(w, "Kitchen is closed", http.StatusServiceUnavailable)
		return
	}
	log.Error("failed to dispatch action: %v", err)
	http.Error(w, "Failed to apply action", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
