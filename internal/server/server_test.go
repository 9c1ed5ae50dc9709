package server

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-bot-be/internal/bootstrap"
	"companion-bot-be/internal/config"
	"companion-bot-be/internal/dto"
	"companion-bot-be/internal/pkg/serverutils"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			LogFilePath:        filepath.Join(dir, "app.log"),
			ChatLogFilePath:    filepath.Join(dir, "chat.log"),
			CorsAllowedOrigins: "http://localhost:5173",
		},
		Session:   config.SessionConfig{Store: config.SessionStoreMemory, TTL: time.Hour},
		Companion: config.CompanionConfig{RandomSeed: 1, EventsTopic: "conversation.ended"},
	}
	container, err := bootstrap.NewContainer(nil, cfg)
	require.NoError(t, err)
	t.Cleanup(container.Close)
	return New(cfg, container)
}

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.GetApp().Test(httptest.NewRequest("GET", "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestServer_SentinelErrorsMapToStatus(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.GetApp().Test(httptest.NewRequest("GET", "/api/companion/v1/sessions/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var body serverutils.BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "session not found", body.Message)
}

func TestAppConfig_RouteParamsOutliveTheRequest(t *testing.T) {
	app := fiber.New(AppConfig())

	var seen []string
	app.Get("/sessions/:id", func(ctx *fiber.Ctx) error {
		seen = append(seen, ctx.Params("id"))
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	first := "0b6f1f7e-8a4e-4c55-9d0c-3f7d2a1b9e01"
	other := strings.Repeat("z", len(first))
	for _, id := range []string{first, other, other} {
		resp, err := app.Test(httptest.NewRequest("GET", "/sessions/"+id, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Len(t, seen, 3)
	assert.Equal(t, first, seen[0])
}

func doJSON[T any](t *testing.T, app *fiber.App, method, path, body string) (int, serverutils.BaseResponse[T]) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(serverutils.AnonymousUserHeader, "tab-user")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out serverutils.BaseResponse[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServer_ConcurrentTurnsOverHTTPAreSerialised(t *testing.T) {
	app := newTestServer(t).GetApp()

	status, created := doJSON[dto.SessionResponse](t, app, "POST", "/api/companion/v1/sessions", "")
	require.Equal(t, fiber.StatusCreated, status)
	sessionId := created.Data.Id
	bogus := strings.Repeat("z", len(sessionId))

	const turns = 12
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			status, _ := doJSON[dto.SendMessageResponse](t, app, "POST", "/api/companion/v1/sessions/"+sessionId+"/messages", `{"message":"asdfgh"}`)
			assert.Equal(t, fiber.StatusOK, status)
		}()
		go func() {
			defer wg.Done()
			status, _ := doJSON[any](t, app, "POST", "/api/companion/v1/sessions/"+bogus+"/messages", `{"message":"asdfgh"}`)
			assert.Equal(t, fiber.StatusNotFound, status)
		}()
	}
	wg.Wait()

	status, session := doJSON[dto.SessionResponse](t, app, "GET", "/api/companion/v1/sessions/"+sessionId, "")
	require.Equal(t, fiber.StatusOK, status)
	// opening line plus one user/bot pair per turn, none lost
	assert.Len(t, session.Data.Messages, 1+2*turns)
}
