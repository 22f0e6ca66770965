package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"go-catalog-api/internal/model"
	"go-catalog-api/internal/rbac"
)

type fakeVerifier struct {
	user model.User
	err  error
}

func (f *fakeVerifier) VerifyAccess(_ context.Context, _ string) (model.User, error) {
	return f.user, f.err
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	principal := model.User{ID: "u1", Email: "a@x.com", Role: rbac.RoleUser}

	t.Run("missing authorization header is rejected", func(t *testing.T) {
		mw := NewAuthMiddleware(&fakeVerifier{user: principal})
		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be called")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		mw := NewAuthMiddleware(&fakeVerifier{user: principal})
		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		mw := NewAuthMiddleware(&fakeVerifier{err: model.ErrUnauthorized})
		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token attaches the principal", func(t *testing.T) {
		mw := NewAuthMiddleware(&fakeVerifier{user: principal})

		var seen model.User
		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			require.True(t, ok)
			seen = user
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, principal.ID, seen.ID)
	})
}

func TestRequireRights(t *testing.T) {
	t.Parallel()

	mw := NewAuthMiddleware(&fakeVerifier{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withPrincipal := func(req *http.Request, user model.User) *http.Request {
		return req.WithContext(context.WithValue(req.Context(), principalContextKey, user))
	}

	t.Run("no principal in context is unauthorized", func(t *testing.T) {
		handler := mw.RequireRights(rbac.RightGetProduct)(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("role lacking the right is forbidden", func(t *testing.T) {
		handler := mw.RequireRights(rbac.RightCreateProduct)(next)

		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil), model.User{ID: "u1", Role: rbac.RoleUser})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("role holding one required right passes", func(t *testing.T) {
		handler := mw.RequireRights(rbac.RightCreateProduct, rbac.RightGetProduct)(next)

		req := withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), model.User{ID: "u1", Role: rbac.RoleUser})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
