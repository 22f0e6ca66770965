//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go-catalog-api/internal/rbac"
)

func TestProductAccessControl(t *testing.T) {
	stack := newTestStack(t)

	email := uniqueEmail("products")
	created := registerUser(t, stack, email, "password1")

	resp, _ := doJSON(t, http.MethodGet, stack.server.URL+"/api/v1/products/", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, stack.server.URL+"/api/v1/products/", nil, created.Tokens.Access)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := map[string]any{"name": "itest-" + email, "price": 9.99, "quantity": 1}
	resp, _ = doJSON(t, http.MethodPost, stack.server.URL+"/api/v1/products/", payload, created.Tokens.Access)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Promote directly in the store; the role is re-read on every request.
	user, err := stack.users.FindByID(context.Background(), created.User.ID)
	require.NoError(t, err)
	user.Role = rbac.RoleAdmin
	require.NoError(t, stack.users.Save(context.Background(), user))

	resp, _ = doJSON(t, http.MethodPost, stack.server.URL+"/api/v1/products/", payload, created.Tokens.Access)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, stack.server.URL+"/api/v1/products/", payload, created.Tokens.Access)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}
