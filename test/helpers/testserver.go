package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobboard_backend/internal/app"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
)

const TestJWTSecret = "test-secret"

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	cancel context.CancelFunc
}

// NewTestServer поднимает приложение на in-memory хранилище и локальном брокере.
// mutate может поправить конфиг до сборки.
func NewTestServer(t *testing.T, mutate ...func(cfg *config.Config)) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.JWT.Secret = TestJWTSecret
	cfg.Storage.Driver = config.StorageDriverMemory
	for _, m := range mutate {
		m(cfg)
	}
	logger.InitWithWriter(cfg.Server.Env, io.Discard)

	repos, err := app.OpenRepositories(cfg)
	if err != nil {
		t.Fatalf("Не удалось открыть хранилище: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	application := app.New(ctx, cfg, repos, nil)

	ts := &TestServer{
		Server: httptest.NewServer(application.Router),
		App:    application,
		cancel: cancel,
	}
	t.Cleanup(ts.Close)
	return ts
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.cancel()
}

// Token выпускает токен для пользователя с ролью
func (ts *TestServer) Token(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	token, err := ts.App.Tokens.GenerateToken(userID, role)
	if err != nil {
		t.Fatalf("Ошибка выпуска токена: %v", err)
	}
	return token
}

// WSURL - адрес websocket с токеном в query
func (ts *TestServer) WSURL(token string) string {
	return "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws?token=" + token
}

func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()
	url := ts.Server.URL + path

	var reqBody io.Reader = nil
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}

	return res, string(resBodyBytes)
}

// DecodeJSON разбирает тело ответа
func DecodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), out); err != nil {
		t.Fatalf("Ошибка разбора JSON %q: %v", body, err)
	}
}

// ApplyBody - валидная анкета для POST /jobs/:jobId/applications
func ApplyBody(fullName string) map[string]interface{} {
	return map[string]interface{}{
		"full_name":     fullName,
		"father_name":   "Ramesh",
		"date_of_birth": "1995-04-12",
		"native_place":  "Pune",
		"national_id":   "234567890123",
		"contact":       "+91 98765 43210",
		"age":           29,
		"gender":        "female",
		"experience":    4,
		"skills":        []string{"welding", "forklift"},
	}
}
