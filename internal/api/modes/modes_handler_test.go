package modes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dark-devil9/UrNav/internal/api/auth"
	"github.com/dark-devil9/UrNav/internal/api/foursquare/foursquaretest"
	"github.com/dark-devil9/UrNav/internal/types"
)

func newTestHandler(recorder PlanRecorder) (*HandlerImpl, *foursquaretest.MockProvider) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	return NewHandlerImpl(newTestService(provider, recorder), discardLogger()), provider
}

func errorDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, body["error"], body["detail"])
	s, _ := body["detail"].(string)
	return s
}

func TestPlanDayHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"tasks", `{"tasks":["Get coffee"],"origin":{"lat":26.9,"lng":75.8}}`, http.StatusOK, ""},
		{"no tasks", `{"tasks":[]}`, http.StatusBadRequest, "No tasks provided or could not parse text"},
		{"bad json", `{"tasks":`, http.StatusBadRequest, "body contains badly-formed JSON"},
		{"unknown field", `{"todo":["x"]}`, http.StatusBadRequest, `body contains unknown key "todo"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(nil)
			rr := httptest.NewRecorder()
			h.PlanDay(rr, httptest.NewRequest(http.MethodPost, "/modes/plan-day", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, errorDetail(t, rr))
				return
			}
			var resp types.PlanDayResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, types.LatLng{Lat: 26.9, Lng: 75.8}, resp.Origin)
			assert.Len(t, resp.Tasks, 1)
		})
	}
}

func TestPlanDayHandler_SavesHistoryForAuthenticatedUser(t *testing.T) {
	recorder := new(MockPlanRecorder)
	userID := uuid.New()
	recorder.On("SavePlan", mock.Anything, userID, mock.Anything).Return(nil)
	h, _ := newTestHandler(recorder)

	req := httptest.NewRequest(http.MethodPost, "/modes/plan-day", strings.NewReader(`{"tasks":["Buy groceries"]}`))
	req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, userID.String()))
	rr := httptest.NewRecorder()
	h.PlanDay(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	recorder.AssertExpectations(t)
}

func TestCompleteTaskHandler(t *testing.T) {
	h, _ := newTestHandler(nil)

	rr := httptest.NewRecorder()
	h.PlanDay(rr, httptest.NewRequest(http.MethodPost, "/modes/plan-day", strings.NewReader(`{"tasks":["Get coffee"],"user_id":"u9"}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"missing task", `{"origin":{"lat":26.9124,"lng":75.7873}}`, http.StatusBadRequest, "Task name is required"},
		{"missing origin", `{"task":"Get coffee"}`, http.StatusBadRequest, "Origin coordinates are required"},
		{"unknown task", `{"task":"Fly a kite","user_id":"u9","origin":{"lat":26.9124,"lng":75.7873}}`, http.StatusNotFound, "Task not found or session not found"},
		{"ok", `{"task":"Get coffee","user_id":"u9","origin":{"lat":26.9124,"lng":75.7873}}`, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.CompleteTask(rr, httptest.NewRequest(http.MethodPost, "/modes/plan-day/complete", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, errorDetail(t, rr))
				return
			}
			var resp types.CompleteTaskResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, 100.0, resp.SessionSummary.CompletionRate)
		})
	}
}

func TestTaskStatusHandler(t *testing.T) {
	h, _ := newTestHandler(nil)

	rr := httptest.NewRecorder()
	h.TaskStatus(rr, httptest.NewRequest(http.MethodGet, "/modes/plan-day/status?lat=26.9", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.TaskStatus(rr, httptest.NewRequest(http.MethodGet, "/modes/plan-day/status?lat=x&lng=1", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `query parameter "lat" must be a number`, errorDetail(t, rr))

	rr = httptest.NewRecorder()
	h.TaskStatus(rr, httptest.NewRequest(http.MethodGet, "/modes/plan-day/status?user_id=nobody&lat=26.9&lng=75.8", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp types.TaskStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Tasks)
	assert.Zero(t, resp.SessionSummary.TotalTasks)
}

func TestBrowseHandlers_DefaultLocation(t *testing.T) {
	h, provider := newTestHandler(nil)

	rr := httptest.NewRecorder()
	h.FreePlaces(rr, httptest.NewRequest(http.MethodGet, "/modes/free-places", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.InDelta(t, 75.9231+0.001, resp.Results[0].Longitude, 1e-9)

	rr = httptest.NewRecorder()
	h.Explorer(rr, httptest.NewRequest(http.MethodGet, "/modes/explorer?radius=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.MeetFriend(rr, httptest.NewRequest(http.MethodPost, "/modes/meet-friend", strings.NewReader(`{"activity":"cafe"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	provider.AssertCalled(t, "Search", mock.Anything, foursquaretest.SearchFor("cafe"))
}
