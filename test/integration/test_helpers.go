//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-catalog-api/internal/config"
	"go-catalog-api/internal/database"
	"go-catalog-api/internal/handler"
	"go-catalog-api/internal/middleware"
	"go-catalog-api/internal/model"
	"go-catalog-api/internal/repository"
	"go-catalog-api/internal/router"
	"go-catalog-api/internal/service"
)

// capturingEmailSender stands in for SMTP so flows that mail out tokens can
// be driven end to end without a mail server.
type capturingEmailSender struct {
	mu          sync.Mutex
	resetToken  string
	verifyToken string
}

func (s *capturingEmailSender) SendResetPasswordEmail(_ context.Context, _ string, resetToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetToken = resetToken
	return nil
}

func (s *capturingEmailSender) SendVerificationEmail(_ context.Context, _ string, verifyToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyToken = verifyToken
	return nil
}

type testStack struct {
	server *httptest.Server
	email  *capturingEmailSender
	users  *repository.UserRepository
}

// newTestStack wires the full application against a real Postgres instance
// and serves it from an in-process listener. Skips when TEST_DATABASE_URL is
// not set.
func newTestStack(t *testing.T) *testStack {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	db, err := database.New(ctx, dbURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	cfg := &config.Config{
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	userRepo := repository.NewUserRepository(db.Pool)
	tokenRepo := repository.NewTokenRepository(db.Pool)
	productRepo := repository.NewProductRepository(db.Pool)
	email := &capturingEmailSender{}

	authService := service.NewAuthService(service.AuthConfig{
		AccessSecret:  "integration-access-secret",
		RefreshSecret: "integration-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    168 * time.Hour,
		ResetTTL:      time.Hour,
		VerifyTTL:     time.Hour,
	}, userRepo, tokenRepo, email)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(service.NewProductService(productRepo))

	server := httptest.NewServer(router.New(cfg, db, authMiddleware, authHandler, productHandler))
	t.Cleanup(server.Close)

	return &testStack{server: server, email: email, users: userRepo}
}

// uniqueEmail keeps runs against a shared database from colliding.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

func doJSON(t *testing.T, method string, url string, payload any, accessToken string) (*http.Response, model.APIResponse) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var env model.APIResponse
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&env)
	}
	return resp, env
}

func registerUser(t *testing.T, stack *testStack, email string, password string) model.AuthResponse {
	t.Helper()

	resp, env := doJSON(t, http.MethodPost, stack.server.URL+"/api/v1/auth/register", map[string]string{
		"name":     "Integration User",
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)

	var out model.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
