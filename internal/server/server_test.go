package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-messages/internal/config"
	"chat-messages/internal/domain/message"
	"chat-messages/internal/handler"
	"chat-messages/internal/redis"
	"chat-messages/internal/repository"
	"chat-messages/internal/server"
	"chat-messages/internal/services"
	"chat-messages/internal/store/memstore"
	"chat-messages/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type page struct {
	Messages   []message.ChatMessage `json:"messages"`
	NextBefore string                `json:"nextBefore"`
}

type denyAll struct{}

func (denyAll) AllowMessage(ctx context.Context, userID string) (*redis.RateLimitResult, error) {
	return &redis.RateLimitResult{Allowed: false, Limit: 1}, nil
}

type harness struct {
	t       *testing.T
	handler http.Handler
	auth    *services.AuthService
}

func newHarness(t *testing.T, limiter interface {
	AllowMessage(ctx context.Context, userID string) (*redis.RateLimitResult, error)
}) *harness {
	t.Helper()
	cfg := &config.Config{Server: config.ServerConfig{Port: "0", Mode: server.TestMode}}
	l := logger.NewNop()

	auth := services.NewAuthService("test-secret")
	svc := services.NewMessageService(repository.NewMessageData(memstore.NewMessageCollection()), nil, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{Message: handler.NewMessageHandler(svc)}, auth, limiter)
	return &harness{t: t, handler: srv.Handler(), auth: auth}
}

func (h *harness) do(method, path string, userID primitive.ObjectID, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if !userID.IsZero() {
		token, err := h.auth.IssueAccessToken(userID)
		require.NoError(h.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestPingAndHealth(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodGet, "/ping", primitive.NilObjectID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = h.do(http.MethodGet, "/health", primitive.NilObjectID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesRequireToken(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodGet, "/v1/messages/"+primitive.NewObjectID().Hex(), primitive.NilObjectID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMessageLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	sender := primitive.NewObjectID()
	conversationID := primitive.NewObjectID()

	w := h.do(http.MethodPost, "/v1/messages", sender, map[string]string{
		"conversationId": conversationID.Hex(),
		"text":           "Hello world",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[message.ChatMessage](t, w).Data
	assert.Equal(t, "Hello world", created.Text)
	assert.Equal(t, sender, created.SenderID)
	assert.Equal(t, conversationID.Hex(), created.Conversation.ID)
	assert.Equal(t, []primitive.ObjectID{}, created.Likes)

	path := "/v1/messages/" + created.ID.Hex()

	w = h.do(http.MethodGet, path, sender, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[message.ChatMessage](t, w).Data.ID)

	w = h.do(http.MethodPut, path+"/tags", sender, map[string]interface{}{
		"tags": []map[string]string{{"id": "topic-1", "type": "subTopic"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []message.Tag{{ID: "topic-1", Type: message.TagTypeSubTopic}}, decode[message.ChatMessage](t, w).Data.Tags)

	liker := primitive.NewObjectID()
	w = h.do(http.MethodPost, path+"/like", liker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[message.ChatMessage](t, w).Data.LikesCount)

	w = h.do(http.MethodDelete, path+"/like", liker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[message.ChatMessage](t, w).Data.LikesCount)

	w = h.do(http.MethodPost, path+"/resolve", sender, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[message.ChatMessage](t, w).Data.Resolved)

	w = h.do(http.MethodDelete, path+"/resolve", sender, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[message.ChatMessage](t, w).Data.Resolved)

	w = h.do(http.MethodDelete, path, liker, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodDelete, path, sender, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[message.ChatMessage](t, w).Data.Deleted)

	w = h.do(http.MethodGet, "/v1/conversations/"+conversationID.Hex()+"/messages", sender, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[page](t, w).Data
	require.Len(t, listed.Messages, 1)
	assert.True(t, listed.Messages[0].Deleted)
	assert.Empty(t, listed.NextBefore)
}

func TestErrorStatuses(t *testing.T) {
	h := newHarness(t, nil)
	user := primitive.NewObjectID()

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed id", http.MethodGet, "/v1/messages/nope", nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing message", http.MethodGet, "/v1/messages/" + primitive.NewObjectID().Hex(), nil, http.StatusNotFound, "NOT_FOUND"},
		{"empty text", http.MethodPost, "/v1/messages", map[string]string{"conversationId": primitive.NewObjectID().Hex()}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad conversation", http.MethodPost, "/v1/messages", map[string]string{"conversationId": "x", "text": "hi"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad limit", http.MethodGet, "/v1/conversations/" + primitive.NewObjectID().Hex() + "/messages?limit=abc", nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad cursor", http.MethodGet, "/v1/conversations/" + primitive.NewObjectID().Hex() + "/messages?before=zz", nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"resolve missing", http.MethodPost, "/v1/messages/" + primitive.NewObjectID().Hex() + "/resolve", nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := h.do(tc.method, tc.path, user, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			resp := decode[json.RawMessage](t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.code, resp.Code)
		})
	}
}

func TestConversationPaging(t *testing.T) {
	h := newHarness(t, nil)
	user := primitive.NewObjectID()
	conversationID := primitive.NewObjectID()
	for _, text := range []string{"one", "two", "three"} {
		w := h.do(http.MethodPost, "/v1/messages", user, map[string]string{"conversationId": conversationID.Hex(), "text": text})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	base := "/v1/conversations/" + conversationID.Hex() + "/messages"
	w := h.do(http.MethodGet, base+"?limit=2", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[page](t, w).Data
	require.Len(t, first.Messages, 2)
	assert.Equal(t, "three", first.Messages[0].Text)
	require.NotEmpty(t, first.NextBefore)

	w = h.do(http.MethodGet, base+"?limit=2&before="+first.NextBefore, user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[page](t, w).Data
	require.Len(t, second.Messages, 1)
	assert.Equal(t, "one", second.Messages[0].Text)
	assert.Empty(t, second.NextBefore)
}

func TestCreateIsRateLimited(t *testing.T) {
	h := newHarness(t, denyAll{})
	w := h.do(http.MethodPost, "/v1/messages", primitive.NewObjectID(), map[string]string{
		"conversationId": primitive.NewObjectID().Hex(),
		"text":           "hi",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestPreflight(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodOptions, "/v1/messages", primitive.NilObjectID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
