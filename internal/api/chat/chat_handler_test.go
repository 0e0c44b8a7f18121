package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dark-devil9/UrNav/internal/api/foursquare/foursquaretest"
	"github.com/dark-devil9/UrNav/internal/types"
)

func newTestRouter() http.Handler {
	h := NewHandlerImpl(newTestService(new(foursquaretest.MockProvider), offlineAssistant()), discardLogger())
	r := chi.NewRouter()
	r.Post("/chat", h.Chat)
	r.Get("/chat/health", h.Health)
	r.Get("/chat/user/{userID}", h.GetUserInfo)
	r.Delete("/chat/user/{userID}", h.ClearConversation)
	return r
}

func TestChatHandler_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{"no location", `{"message":"hi"}`, "Location information is required"},
		{"missing lon", `{"message":"hi","location":{"lat":26.9}}`, "Invalid location coordinates"},
		{"no message", `{"message":" ","location":{"lat":26.9,"lon":75.8}}`, "Message is required"},
		{"string coordinates", `{"message":"hi","location":{"lat":"26.9","lon":75.8}}`, ""},
	}
	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			if tt.wantDetail != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
		})
	}
}

func TestChatHandler_Conversation(t *testing.T) {
	router := newTestRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"message":"call me ravi","location":{"lat":26.9,"lon":75.8,"name":"Bani Park"}}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp types.ChatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.UserID)
	require.NoError(t, err, "a user id is generated when none is sent")
	require.NotNil(t, resp.UserInfo.Name)
	assert.Equal(t, "Ravi", *resp.UserInfo.Name)
	assert.Equal(t, "Bani Park", resp.UserInfo.Location.Name)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat/user/"+resp.UserID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var info types.ChatUserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "Ravi", *info.UserInfo.Name)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/chat/user/"+resp.UserID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Conversation cleared successfully","user_id":"`+resp.UserID+`"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat/user/"+resp.UserID, nil))
	assert.JSONEq(t, `{"user_id":"`+resp.UserID+`","user_info":{"name":null,"location":null,"preferences":[]}}`, rr.Body.String())
}

func TestChatHandler_Health(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp types.ChatHealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "chat", resp.Service)
}
