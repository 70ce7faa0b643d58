package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duynhne/backoffice/internal/core/domain"
	"github.com/duynhne/backoffice/internal/core/fakeapi"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newFixture(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	api := fakeapi.New()
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return api, srv.URL + "/api"
}

func TestClient_CreateThenListReturnsAssignedID(t *testing.T) {
	_, base := newFixture(t)
	client := New[domain.Category, domain.CategoryInput](base, "categories", nil, zap.NewNop())
	ctx := context.Background()

	created, err := client.Create(ctx, domain.CategoryInput{Name: "Tools", Description: "Hand tools"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.Category{ID: created.ID, Name: "Tools", Description: "Hand tools"}, list[0])
}

func TestClient_ListEmptyIsNotNil(t *testing.T) {
	_, base := newFixture(t)
	client := New[domain.User, domain.UserInput](base, "users", nil, nil)

	list, err := client.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestClient_ItemsEmbedCategory(t *testing.T) {
	api, base := newFixture(t)
	catID := api.Seed("categories", fakeapi.Document{"name": "Tools"})
	client := New[domain.Item, domain.ItemInput](base, "items", nil, nil)
	ctx := context.Background()

	_, err := client.Create(ctx, domain.ItemInput{
		Name:     "Widget",
		Price:    decimal.RequireFromString("9.99"),
		Category: catID,
	})
	require.NoError(t, err)

	items, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Tools", items[0].CategoryName())
	assert.Equal(t, catID, items[0].CategoryID())
	assert.True(t, decimal.RequireFromString("9.99").Equal(items[0].Price))
}

func TestClient_UpdateAndDelete(t *testing.T) {
	api, base := newFixture(t)
	id := api.Seed("orders", fakeapi.Document{"userId": "u1", "itemName": "Widget", "description": "x", "price": 1})
	client := New[domain.Order, domain.OrderInput](base, "orders", nil, nil)
	ctx := context.Background()

	updated, err := client.Update(ctx, id, domain.OrderInput{
		UserID: "u2", ItemName: "Widget", Description: "rush", Price: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "u2", updated.UserID)

	require.NoError(t, client.Delete(ctx, id))
	assert.Equal(t, 1, api.Calls(http.MethodDelete, "orders"))
	assert.Empty(t, api.Snapshot("orders"))
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	api, base := newFixture(t)
	client := New[domain.Category, domain.CategoryInput](base, "categories", nil, nil)
	ctx := context.Background()

	t.Run("update of vanished record is not found", func(t *testing.T) {
		_, err := client.Update(ctx, "missing", domain.CategoryInput{Name: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})

	t.Run("delete of vanished record is not found", func(t *testing.T) {
		err := client.Delete(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("create rejected by server is validation", func(t *testing.T) {
		_, err := client.Create(ctx, domain.CategoryInput{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("5xx is server error", func(t *testing.T) {
		api.FailNext(http.MethodPost, "categories", http.StatusInternalServerError)
		_, err := client.Create(ctx, domain.CategoryInput{Name: "x"})
		assert.ErrorIs(t, err, domain.ErrServer)
	})

	t.Run("list non-2xx is server error", func(t *testing.T) {
		api.FailNext(http.MethodGet, "categories", http.StatusNotFound)
		_, err := client.List(ctx)
		assert.ErrorIs(t, err, domain.ErrServer)
	})
}

func TestClient_MalformedBodyIsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	t.Cleanup(srv.Close)

	client := New[domain.User, domain.UserInput](srv.URL+"/api", "users", nil, nil)
	_, err := client.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrServer)
}

func TestClient_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/api"
	srv.Close()

	client := New[domain.User, domain.UserInput](base, "users", nil, nil)
	_, err := client.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_SendsJSONWithoutAuthHeaders(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"u1","username":"alice"}`))
	}))
	t.Cleanup(srv.Close)

	client := New[domain.User, domain.UserInput](srv.URL+"/api", "users", nil, nil)
	user, err := client.Create(context.Background(), domain.UserInput{Username: "alice", Email: "a@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/users", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestClient_EscapesIdentifierInPath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := New[domain.User, domain.UserInput](srv.URL+"/api", "users", nil, nil)
	require.NoError(t, client.Delete(context.Background(), "a/b"))
	assert.Equal(t, "/api/users/a%2Fb", path)
}

func TestClient_Get(t *testing.T) {
	api, base := newFixture(t)
	client := New[domain.User, domain.UserInput](base, "users", nil, nil)
	ctx := context.Background()
	id := api.Seed("users", fakeapi.Document{"username": "alice", "email": "a@example.com"})

	t.Run("found", func(t *testing.T) {
		user, err := client.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.User{ID: id, Username: "alice", Email: "a@example.com"}, *user)
	})

	t.Run("vanished record is not found", func(t *testing.T) {
		_, err := client.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed body is server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`["not","a","user"]`))
		}))
		t.Cleanup(srv.Close)

		_, err := New[domain.User, domain.UserInput](srv.URL+"/api", "users", nil, nil).Get(ctx, "u1")
		assert.ErrorIs(t, err, domain.ErrServer)
	})
}
