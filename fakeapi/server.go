// client/fakeapi/server.go
//
// Package fakeapi is an in-memory notes backend used by the client tests.
// It speaks the same REST surface as the real service.
package fakeapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/vinizap/lumi/client/domain"
	"golang.org/x/crypto/bcrypt"
)

// Call is one request as seen by the server.
type Call struct {
	Method string
	Path   string
	Query  string
}

type failure struct {
	status int
	body   string
}

type Server struct {
	app *fiber.App

	mu     sync.Mutex
	users  map[string][]byte
	tokens map[string]string
	notes  map[string][]domain.Note
	calls  []Call
	fail   map[string]failure
}

func New() *Server {
	s := &Server{
		users:  make(map[string][]byte),
		tokens: make(map[string]string),
		notes:  make(map[string][]domain.Note),
		fail:   make(map[string]failure),
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(s.record)

	app.Post("/auth/register", s.handleRegister)
	app.Post("/auth/login", s.handleLogin)

	app.Get("/auth/me", s.requireToken, s.handleMe)
	app.Get("/notes", s.requireToken, s.handleListNotes)
	app.Post("/notes", s.requireToken, s.handleCreateNote)
	app.Put("/notes/:id", s.requireToken, s.handleUpdateNote)
	app.Delete("/notes/:id", s.requireToken, s.handleDeleteNote)
	app.Get("/tags", s.requireToken, s.handleTags)

	s.app = app
	return s
}

// Handler exposes the app to net/http, for httptest.NewServer.
func (s *Server) Handler() http.HandlerFunc {
	return adaptor.FiberApp(s.app)
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// FailNext makes the next request to method+path answer status with body.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.mu.Lock()
	s.fail[method+" "+path] = failure{status: status, body: body}
	s.mu.Unlock()
}

// RevokeTokens invalidates every issued credential.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = make(map[string]string)
	s.mu.Unlock()
}

// Seed stores notes for email directly, assigning ids.
func (s *Server) Seed(email string, notes ...domain.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range notes {
		n.ID = domain.NoteID(uuid.NewString())
		s.notes[email] = append(s.notes[email], n)
	}
}

func (s *Server) record(c *fiber.Ctx) error {
	call := Call{
		Method: strings.Clone(c.Method()),
		Path:   strings.Clone(c.Path()),
		Query:  string(c.Request().URI().QueryString()),
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	key := call.Method + " " + call.Path
	f, failing := s.fail[key]
	delete(s.fail, key)
	s.mu.Unlock()

	if failing {
		return c.Status(f.status).SendString(f.body)
	}
	return c.Next()
}

func (s *Server) requireToken(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	s.mu.Lock()
	email, found := s.tokens[token]
	s.mu.Unlock()
	if !found {
		return c.Status(fiber.StatusUnauthorized).SendString("Invalid token")
	}
	c.Locals("email", email)
	return c.Next()
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var creds domain.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	if creds.Validate() != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Email and password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.MinCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[creds.Email]; exists {
		return c.Status(fiber.StatusConflict).SendString("Email already registered")
	}
	s.users[creds.Email] = hash
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var creds domain.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	s.mu.Lock()
	hash, ok := s.users[creds.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).SendString("Invalid credentials")
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = creds.Email
	s.mu.Unlock()
	return c.JSON(fiber.Map{"token": token})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"email": c.Locals("email")})
}

func (s *Server) handleListNotes(c *fiber.Ctx) error {
	email := c.Locals("email").(string)
	search := strings.ToLower(c.Query("search"))
	var want []string
	if raw := c.Query("tags"); raw != "" {
		want = strings.Split(raw, ",")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Note{}
	for _, n := range s.notes[email] {
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Title), search) &&
			!strings.Contains(strings.ToLower(n.Content), search) {
			continue
		}
		if !hasAllTags(n, want) {
			continue
		}
		out = append(out, n)
	}
	return c.JSON(out)
}

func hasAllTags(n domain.Note, tags []string) bool {
	for _, t := range tags {
		if !n.HasTag(t) {
			return false
		}
	}
	return true
}

func (s *Server) handleCreateNote(c *fiber.Ctx) error {
	email := c.Locals("email").(string)
	var req domain.Note
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Title required")
	}

	note := domain.Note{
		ID:      domain.NoteID(uuid.NewString()),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	s.mu.Lock()
	s.notes[email] = append(s.notes[email], note)
	s.mu.Unlock()
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *Server) handleUpdateNote(c *fiber.Ctx) error {
	email := c.Locals("email").(string)
	id := domain.NoteID(c.Params("id"))
	var req domain.Note
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes[email] {
		if n.ID != id {
			continue
		}
		n.Title = req.Title
		n.Content = req.Content
		n.Tags = req.Tags
		s.notes[email][i] = n
		return c.JSON(n)
	}
	return c.Status(fiber.StatusNotFound).SendString("Note not found")
}

func (s *Server) handleDeleteNote(c *fiber.Ctx) error {
	email := c.Locals("email").(string)
	id := domain.NoteID(c.Params("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.notes[email]
	for i, n := range notes {
		if n.ID == id {
			s.notes[email] = append(notes[:i], notes[i+1:]...)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return c.Status(fiber.StatusNotFound).SendString("Note not found")
}

func (s *Server) handleTags(c *fiber.Ctx) error {
	email := c.Locals("email").(string)
	s.mu.Lock()
	tags := domain.DistinctTags(s.notes[email])
	s.mu.Unlock()
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(tags)
}
