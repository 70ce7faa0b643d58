package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_ListPreservesInsertionOrder(t *testing.T) {
	s := New()
	first := s.Seed("users", Document{"username": "b", "email": "b@example.com"})
	second := s.Seed("users", Document{"username": "a", "email": "a@example.com"})

	w := do(t, s, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)

	var docs []Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0]["_id"])
	assert.Equal(t, second, docs[1]["_id"])
}

func TestServer_CreateValidatesRequiredFields(t *testing.T) {
	s := New()

	w := do(t, s, http.MethodPost, "/api/orders", `{"userId":"u1","itemName":"Widget","price":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "description is required")

	w = do(t, s, http.MethodPost, "/api/orders", `{"userId":"u1","itemName":"Widget","description":"x","price":1}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, s.Snapshot("orders"), 1)
}

func TestServer_ItemsEmbedCategoryOnRead(t *testing.T) {
	s := New()
	catID := s.Seed("categories", Document{"name": "Tools"})

	w := do(t, s, http.MethodPost, "/api/items", `{"name":"Widget","price":9.99,"category":"`+catID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var item Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	category, ok := item["category"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Tools", category["name"])

	assert.Equal(t, catID, s.Snapshot("items")[0]["category"])
}

func TestServer_FailNextAppliesOnce(t *testing.T) {
	s := New()
	s.FailNext(http.MethodGet, "categories", http.StatusServiceUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/categories", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/categories", "").Code)
	assert.Equal(t, 2, s.Calls(http.MethodGet, "categories"))
}

func TestServer_UnknownResourceAndRecord(t *testing.T) {
	s := New()

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/widgets", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/users/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/api/users/nope", `{"username":"a","email":"e"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/users/nope", "").Code)
}
