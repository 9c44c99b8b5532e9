package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-source-os/allframe/core/router"
)

func TestRESTAdapterRouting(t *testing.T) {
	t.Parallel()

	newAdapter := func(t *testing.T) (*router.Registry, *router.RESTAdapter) {
		t.Helper()
		reg := router.NewRegistry()
		return reg, router.NewRESTAdapter(reg)
	}

	t.Run("dispatches to matching route", func(t *testing.T) {
		t.Parallel()

		reg, rest := newAdapter(t)
		reg.Register("get_user", staticHandler("User data"))
		require.NoError(t, rest.Route("GET", "/users/:id", "get_user"))

		out, err := rest.Handle(context.Background(), "GET /users/42")
		require.NoError(t, err)
		assert.Equal(t, "User data", out)
	})

	t.Run("extracts path parameters positionally", func(t *testing.T) {
		t.Parallel()

		reg, rest := newAdapter(t)
		reg.Register("echo", func(ctx context.Context, payload string) (string, error) {
			return payload, nil
		})
		require.NoError(t, rest.Route("GET", "/orgs/{org}/repos/{repo}", "echo"))

		out, err := rest.Handle(context.Background(), "GET /orgs/acme/repos/widget")
		require.NoError(t, err)

		var params map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &params))
		assert.Equal(t, map[string]string{"org": "acme", "repo": "widget"}, params)
	})

	t.Run("passes query parameters through", func(t *testing.T) {
		t.Parallel()

		reg, rest := newAdapter(t)
		reg.Register("search", func(ctx context.Context, payload string) (string, error) {
			return payload, nil
		})
		require.NoError(t, rest.Route("GET", "/users", "search"))

		out, err := rest.Handle(context.Background(), "GET /users?query=john&limit=10")
		require.NoError(t, err)

		var params map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &params))
		assert.Equal(t, "john", params["query"])
		assert.Equal(t, "10", params["limit"])
	})

	t.Run("first matching route wins", func(t *testing.T) {
		t.Parallel()

		reg, rest := newAdapter(t)
		reg.Register("first", staticHandler("first"))
		reg.Register("second", staticHandler("second"))
		require.NoError(t, rest.Route("GET", "/users/:id", "first"))
		require.NoError(t, rest.Route("GET", "/users/{uid}", "second"))

		out, err := rest.Handle(context.Background(), "GET /users/1")
		require.NoError(t, err)
		assert.Equal(t, "first", out)
	})

	t.Run("method must match exactly", func(t *testing.T) {
		t.Parallel()

		reg, rest := newAdapter(t)
		reg.Register("h", staticHandler("x"))
		require.NoError(t, rest.Route("POST", "/users", "h"))

		_, err := rest.Handle(context.Background(), "GET /users")
		var httpErr *router.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, 404, httpErr.Status)
	})

	t.Run("rejects unknown registration method", func(t *testing.T) {
		t.Parallel()

		_, rest := newAdapter(t)
		err := rest.Route("FETCH", "/users", "h")
		assert.ErrorIs(t, err, router.ErrInvalidMethod)
	})

	t.Run("malformed request", func(t *testing.T) {
		t.Parallel()

		_, rest := newAdapter(t)
		_, err := rest.Handle(context.Background(), "GET")

		var httpErr *router.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, 400, httpErr.Status)
	})
}

func TestRESTAdapterErrorClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found maps to 404", errors.New("user not found"), 404},
		{"invalid maps to 400", errors.New("invalid user ID"), 400},
		{"bad maps to 400", errors.New("bad cursor"), 400},
		{"other maps to 500", errors.New("connection reset"), 500},
		{"typed status passes through", router.NewHTTPError(418, "teapot"), 418},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			reg := router.NewRegistry()
			rest := router.NewRESTAdapter(reg)
			reg.Register("fail", func(ctx context.Context, payload string) (string, error) {
				return "", tc.err
			})
			require.NoError(t, rest.Route("GET", "/fail", "fail"))

			_, err := rest.Handle(context.Background(), "GET /fail")
			var httpErr *router.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tc.wantStatus, httpErr.Status)
			assert.Equal(t, tc.err.Error(), httpErr.Message)
		})
	}
}

func TestRESTAdapterMetadata(t *testing.T) {
	t.Parallel()

	store := router.NewMetadataStore()
	reg := router.NewRegistry()
	rest := router.NewRESTAdapter(reg, router.WithRESTMetadata(store))

	require.NoError(t, rest.Route("GET", "/users/{id}", "get_user"))

	m, ok := store.Lookup("rest", "/users/{id}", "GET")
	require.True(t, ok)
	assert.Equal(t, "rest", m.Protocol)

	// Duplicate (protocol, path, method) registration is rejected.
	err := rest.Route("GET", "/users/{id}", "other")
	assert.ErrorIs(t, err, router.ErrDuplicateRoute)
}
