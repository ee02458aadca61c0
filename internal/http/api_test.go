package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vetinfrajer/VetinChatApp/internal/auth"
	"github.com/Vetinfrajer/VetinChatApp/internal/presence"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository/sqlite"
	"github.com/Vetinfrajer/VetinChatApp/internal/service"
	"github.com/Vetinfrajer/VetinChatApp/internal/socket"
)

type apiEnv struct {
	server   *httptest.Server
	registry *presence.Registry
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	tmpfile, err := os.CreateTemp(t.TempDir(), "chat-*.db")
	require.NoError(t, err)
	tmpfile.Close()

	db, err := sqlite.Open(tmpfile.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	friendRepo := sqlite.NewFriendRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, friendRepo.Init(ctx))
	require.NoError(t, messageRepo.Init(ctx))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens := auth.NewManager("test-secret", time.Hour)
	registry := presence.NewRegistry()

	users := service.NewUserService(userRepo, friendRepo, messageRepo, registry)
	friends := service.NewFriendService(userRepo, friendRepo, registry)
	conversations := service.NewConversationService(friendRepo, messageRepo, registry)
	delivery := service.NewDeliveryService(messageRepo, registry, logger)
	ws := socket.NewHandler(tokens, registry, delivery, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(tokens, users, friends, conversations, ws, "*")
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &apiEnv{server: server, registry: registry}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (e *apiEnv) doList(t *testing.T, path, token string) (*http.Response, []map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded []map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '[' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (e *apiEnv) registerUser(t *testing.T, name, email string) (userID, token string) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestRegisterAndDuplicateEmail(t *testing.T) {
	env := newAPIEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "password456",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["message"])
}

func TestRegisterMissingFields(t *testing.T) {
	env := newAPIEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Alice",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	env := newAPIEnv(t)
	userID, _ := env.registerUser(t, "Alice", "alice@example.com")

	resp, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, userID, body["user"].(map[string]any)["id"])

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileRequiresAuth(t *testing.T) {
	env := newAPIEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/auth/profile", "bogus-token", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProfileRoundTrip(t *testing.T) {
	env := newAPIEnv(t)
	userID, token := env.registerUser(t, "Alice", "alice@example.com")

	resp, body := env.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, userID, body["id"])

	resp, body = env.do(t, http.MethodPut, "/api/auth/profile", token, map[string]string{
		"name":  "Alice B.",
		"email": "alice@example.com",
		"bio":   "hello",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Alice B.", body["name"])
	assert.Equal(t, "hello", body["bio"])
}

func TestStats(t *testing.T) {
	env := newAPIEnv(t)
	_, aliceToken := env.registerUser(t, "Alice", "alice@example.com")
	bobID, _ := env.registerUser(t, "Bob", "bob@example.com")

	resp, _ := env.do(t, http.MethodPost, "/api/friends", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/auth/stats", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["friends"])
	assert.EqualValues(t, 0, body["messages"])
}

func TestListUsersExcludesCaller(t *testing.T) {
	env := newAPIEnv(t)
	_, aliceToken := env.registerUser(t, "Alice", "alice@example.com")
	bobID, _ := env.registerUser(t, "Bob", "bob@example.com")

	resp, users := env.doList(t, "/api/users", aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, users, 1)
	assert.Equal(t, bobID, users[0]["id"])
	assert.Equal(t, false, users[0]["isOnline"])
}

func TestFriendsListWithPresence(t *testing.T) {
	env := newAPIEnv(t)
	_, aliceToken := env.registerUser(t, "Alice", "alice@example.com")
	bobID, _ := env.registerUser(t, "Bob", "bob@example.com")

	resp, _ := env.do(t, http.MethodPost, "/api/friends", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env.registry.Register(bobID, nopConn{})

	resp, friends := env.doList(t, "/api/friends", aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, friends, 1)
	assert.Equal(t, true, friends[0]["isOnline"])
}

func TestConversationMessagesRequireFriendLink(t *testing.T) {
	env := newAPIEnv(t)
	_, aliceToken := env.registerUser(t, "Alice", "alice@example.com")
	bobID, _ := env.registerUser(t, "Bob", "bob@example.com")

	resp, _ := env.do(t, http.MethodGet, "/api/conversations/"+bobID+"/messages", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/friends", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, messages := env.doList(t, "/api/conversations/"+bobID+"/messages", aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, messages)
}

func TestConversationsList(t *testing.T) {
	env := newAPIEnv(t)
	_, aliceToken := env.registerUser(t, "Alice", "alice@example.com")
	bobID, _ := env.registerUser(t, "Bob", "bob@example.com")

	resp, _ := env.do(t, http.MethodPost, "/api/friends", aliceToken, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, conversations := env.doList(t, "/api/conversations", aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, conversations, 1)
	participant := conversations[0]["participant"].(map[string]any)
	assert.Equal(t, bobID, participant["id"])
	assert.EqualValues(t, 0, conversations[0]["unreadCount"])
}

func TestAddFriendUnknownUser(t *testing.T) {
	env := newAPIEnv(t)
	_, token := env.registerUser(t, "Alice", "alice@example.com")

	resp, _ := env.do(t, http.MethodPost, "/api/friends", token, map[string]string{"userId": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := newAPIEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type nopConn struct{}

func (nopConn) Send(event string, data any) error { return nil }
