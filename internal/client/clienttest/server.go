// Package clienttest runs an in-memory task API behind a gin router for
// tests of code that talks to the remote server.
package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type Record = map[string]json.RawMessage

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"isRead"`
}

type Feedback struct {
	TaskID           string
	NewPriority      string `json:"newPriority"`
	OriginalPriority string `json:"originalPriority"`
	UserInput        string `json:"userInput"`
}

// ParseFunc answers a parse request with a status and a JSON body.
type ParseFunc func(userInput string, session map[string]any) (int, any)

type Server struct {
	URL string

	mu            sync.Mutex
	order         []string
	tasks         map[string]Record
	notifications []Notification
	feedback      []Feedback
	requests      []string
	failStatus    int
	failCount     int
	seq           int
	parse         ParseFunc
	onRequest     func(method, path string)
	delay         time.Duration
}

// New starts a server that is closed with the test. URL ends in /api.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := &Server{tasks: make(map[string]Record)}
	srv := httptest.NewServer(s.router())
	t.Cleanup(srv.Close)
	s.URL = srv.URL + "/api"
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(s.record, s.inject)
	api := r.Group("/api")
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.PUT("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.POST("/tasks/:id/priority-feedback", s.priorityFeedback)
	api.POST("/parse-task", s.parseTask)
	api.GET("/notifications", s.listNotifications)
	api.POST("/notifications/clear", s.clearNotifications)
	api.POST("/notifications/:id/mark-read", s.markRead)
	return r
}

// FailNext makes the next n requests answer with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCount = n
	s.failStatus = status
}

// Delay holds every response for d.
func (s *Server) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// OnRequest runs fn before each request is handled.
func (s *Server) OnRequest(fn func(method, path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRequest = fn
}

func (s *Server) OnParse(fn ParseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parse = fn
}

// Seed stores a task record verbatim. It returns the record's id.
func (s *Server) Seed(t testing.TB, payload string) string {
	t.Helper()
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(rec)
}

func (s *Server) SeedNotification(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

// Task returns the stored record for id.
func (s *Server) Task(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tasks[id]
	return rec, ok
}

func (s *Server) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Server) Feedback() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Feedback(nil), s.feedback...)
}

func (s *Server) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

// Requests lists "METHOD path" for every request seen.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, c.Request.Method+" "+c.Request.URL.Path)
	delay := s.delay
	hook := s.onRequest
	s.mu.Unlock()
	if hook != nil {
		hook(c.Request.Method, c.Request.URL.Path)
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	c.Next()
}

func (s *Server) inject(c *gin.Context) {
	s.mu.Lock()
	fail := s.failCount > 0
	status := s.failStatus
	if fail {
		s.failCount--
	}
	s.mu.Unlock()
	if fail {
		c.AbortWithStatusJSON(status, gin.H{"success": false, "feedback": gin.H{"display": "injected failure"}})
		return
	}
	c.Next()
}

func (s *Server) putLocked(rec Record) string {
	var id string
	if raw, ok := rec["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	if id == "" {
		s.seq++
		id = fmt.Sprintf("srv-%d", s.seq)
		rec["id"] = mustJSON(id)
	}
	if _, exists := s.tasks[id]; !exists {
		s.order = append(s.order, id)
	}
	s.tasks[id] = rec
	return id
}

func (s *Server) listTasks(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createTask(c *gin.Context) {
	var rec Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(rec, "id")
	s.putLocked(rec)
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) updateTask(c *gin.Context) {
	id := c.Param("id")
	var body Record
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tasks[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	for k, v := range body {
		rec[k] = v
	}
	rec["id"] = mustJSON(id)
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteTask(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	delete(s.tasks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) priorityFeedback(c *gin.Context) {
	var fb Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fb.TaskID = c.Param("id")
	s.mu.Lock()
	s.feedback = append(s.feedback, fb)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) parseTask(c *gin.Context) {
	var req struct {
		UserInput      string         `json:"userInput"`
		SessionContext map[string]any `json:"sessionContext"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	parse := s.parse
	s.mu.Unlock()
	if parse != nil {
		status, body := parse(req.UserInput, req.SessionContext)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"task":     gin.H{"title": req.UserInput},
		"feedback": gin.H{"display": "Created task: " + req.UserInput, "voice": "Done"},
		"analysis": gin.H{"completeness": 1, "missing_info": []string{}, "suggestions": []string{}},
	})
}

func (s *Server) listNotifications(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Notification{}, s.notifications...)
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": out})
}

func (s *Server) markRead(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false})
}

func (s *Server) clearNotifications(c *gin.Context) {
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
