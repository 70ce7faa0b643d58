// Package fakeapi is an in-memory stand-in for the external REST API. It implements
// the four resource collections with standard CRUD semantics and is used by tests
// and by cmd/fakeapi for local development.
package fakeapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Document is one stored record; "_id" holds its identifier.
type Document map[string]any

// requiredFields mirrors the server-side schema of each collection.
var requiredFields = map[string][]string{
	"users":      {"username", "email"},
	"categories": {"name"},
	"items":      {"name", "price", "category"},
	"orders":     {"userId", "itemName", "description", "price"},
}

type collection struct {
	order []string
	docs  map[string]Document
}

// Server holds the collections. It is safe for concurrent use.
type Server struct {
	mu          sync.Mutex
	collections map[string]*collection
	failures    map[string]int
	calls       map[string]int
	engine      *gin.Engine
}

// New returns an empty fake API.
func New() *Server {
	s := &Server{
		collections: make(map[string]*collection),
		failures:    make(map[string]int),
		calls:       make(map[string]int),
	}
	for name := range requiredFields {
		s.collections[name] = &collection{docs: make(map[string]Document)}
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.instrument)
	api := r.Group("/api/:resource")
	{
		api.GET("", s.list)
		api.POST("", s.create)
		api.GET("/:id", s.get)
		api.PUT("/:id", s.update)
		api.DELETE("/:id", s.delete)
	}
	s.engine = r
	return s
}

// Handler exposes the API for httptest.NewServer or http.ListenAndServe.
func (s *Server) Handler() http.Handler { return s.engine }

// Seed stores doc in resource and returns its new identifier.
func (s *Server) Seed(resource string, doc Document) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(s.collections[resource], doc)
}

// FailNext makes the next request with method on resource answer status.
func (s *Server) FailNext(method, resource string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[callKey(method, resource)] = status
}

// Calls reports how many requests with method reached resource.
func (s *Server) Calls(method, resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[callKey(method, resource)]
}

// Snapshot returns the stored documents of resource in insertion order.
func (s *Server) Snapshot(resource string) []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[resource]
	out := make([]Document, 0, len(col.order))
	for _, id := range col.order {
		out = append(out, clone(col.docs[id]))
	}
	return out
}

func callKey(method, resource string) string {
	return strings.ToUpper(method) + " " + resource
}

// instrument counts calls, rejects unknown collections and applies injected failures.
func (s *Server) instrument(c *gin.Context) {
	resource := c.Param("resource")

	s.mu.Lock()
	_, known := s.collections[resource]
	key := callKey(c.Request.Method, resource)
	s.calls[key]++
	status, fail := s.failures[key]
	delete(s.failures, key)
	s.mu.Unlock()

	if !known {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "unknown resource"})
		return
	}
	if fail {
		c.AbortWithStatusJSON(status, gin.H{"message": "injected failure"})
		return
	}
	c.Next()
}

func (s *Server) list(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resource := c.Param("resource")
	col := s.collections[resource]
	out := make([]Document, 0, len(col.order))
	for _, id := range col.order {
		out = append(out, s.populateLocked(resource, col.docs[id]))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) get(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resource := c.Param("resource")
	doc, ok := s.collections[resource].docs[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	c.JSON(http.StatusOK, s.populateLocked(resource, doc))
}

func (s *Server) create(c *gin.Context) {
	var doc Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resource := c.Param("resource")
	if msg := s.validateLocked(resource, doc); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}
	id := s.insertLocked(s.collections[resource], doc)
	c.JSON(http.StatusCreated, s.populateLocked(resource, s.collections[resource].docs[id]))
}

func (s *Server) update(c *gin.Context) {
	var doc Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resource := c.Param("resource")
	id := c.Param("id")
	col := s.collections[resource]
	if _, ok := col.docs[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	if msg := s.validateLocked(resource, doc); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}
	doc = clone(doc)
	doc["_id"] = id
	col.docs[id] = doc
	c.JSON(http.StatusOK, s.populateLocked(resource, doc))
}

func (s *Server) delete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collections[c.Param("resource")]
	id := c.Param("id")
	if _, ok := col.docs[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	delete(col.docs, id)
	for i, existing := range col.order {
		if existing == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (s *Server) insertLocked(col *collection, doc Document) string {
	id := uuid.NewString()
	doc = clone(doc)
	doc["_id"] = id
	col.docs[id] = doc
	col.order = append(col.order, id)
	return id
}

func (s *Server) validateLocked(resource string, doc Document) string {
	for _, field := range requiredFields[resource] {
		v, ok := doc[field]
		if !ok || v == nil {
			return field + " is required"
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			return field + " is required"
		}
	}
	if resource == "items" {
		catID, _ := doc["category"].(string)
		if _, ok := s.collections["categories"].docs[catID]; !ok {
			return "category does not exist"
		}
	}
	return ""
}

// populateLocked embeds the referenced category into item documents.
func (s *Server) populateLocked(resource string, doc Document) Document {
	out := clone(doc)
	if resource != "items" {
		return out
	}
	catID, ok := doc["category"].(string)
	if !ok {
		return out
	}
	if cat, found := s.collections["categories"].docs[catID]; found {
		out["category"] = clone(cat)
	}
	return out
}

func clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
