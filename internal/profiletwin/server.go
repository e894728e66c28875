package profiletwin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var sortKeys = map[string]bool{
	"createdAt": true, "dateJoined": true, "lastLogin": true, "lastActivity": true,
	"firstName": true, "lastName": true, "email": true, "companyName": true,
}

// Server answers the admin API routes from a Store.
type Server struct {
	store  *Store
	email  string
	pass   string
	logger zerolog.Logger

	mu     sync.Mutex
	tokens map[string]bool
}

// NewServer returns a twin that accepts a single admin account.
func NewServer(store *Store, adminEmail, adminPassword string, logger zerolog.Logger) *Server {
	return &Server{
		store:  store,
		email:  strings.ToLower(adminEmail),
		pass:   adminPassword,
		logger: logger,
		tokens: make(map[string]bool),
	}
}

// Store returns the backing store.
func (s *Server) Store() *Store { return s.store }

// RevokeAll invalidates every issued token, as if all sessions expired.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	s.tokens = make(map[string]bool)
	s.mu.Unlock()
}

// Issue creates a valid token without going through login.
func (s *Server) Issue() string {
	tok := uuid.NewString()
	s.mu.Lock()
	s.tokens[tok] = true
	s.mu.Unlock()
	return tok
}

func (s *Server) valid(tok string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[tok]
}

// Handler returns the routed handler with logging and recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/profile/login", s.login).Methods(http.MethodPost)

	authed := r.PathPrefix("/profile").Subrouter()
	authed.Use(s.requireBearer)
	authed.HandleFunc("", s.list).Methods(http.MethodGet)
	authed.HandleFunc("/{id}", s.get).Methods(http.MethodGet)
	authed.HandleFunc("/{id}", s.delete).Methods(http.MethodDelete)

	return recoverer(s.logger, requestLog(s.logger, r))
}

// health GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "OK", "profiles": s.store.Len()})
}

// login POST /profile/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var fields []fieldError
	if !strfmt.IsEmail(email) {
		fields = append(fields, fieldError{Field: "email", Message: "must be a valid email"})
	}
	if req.Password == "" {
		fields = append(fields, fieldError{Field: "password", Message: "is required"})
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}
	if email != s.email || req.Password != s.pass {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": map[string]string{"id": "admin", "email": s.email, "firstName": "Admin"},
		"token":   s.Issue(),
	})
}

// list GET /profile
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q, fields := parseListQuery(r)
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}
	writeJSON(w, http.StatusOK, s.store.List(q))
}

// get GET /profile/{id}
func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(mux.Vars(r)["id"])
	if errors.Is(err, ErrNotFound) {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	v := r.URL.Query()
	page := atoiDefault(v.Get("page"), 1)
	limit := atoiDefault(v.Get("limit"), 10)
	if page < 1 || limit < 1 || limit > 100 {
		writeValidation(w, []fieldError{{Field: "page", Message: "page >= 1 and 1 <= limit <= 100"}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"profile":   project(p, v.Get("fields")),
		"referrals": s.store.ReferralsOf(p.ReferralCode, page, limit),
	})
}

// delete DELETE /profile/{id}
func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Delete(mux.Vars(r)["id"])
	if errors.Is(err, ErrNotFound) {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "profile deleted",
		"profile": map[string]string{"_id": p.ID, "email": p.Email},
	})
}

func parseListQuery(r *http.Request) (ListQuery, []fieldError) {
	v := r.URL.Query()
	q := ListQuery{
		Search:      strings.TrimSpace(v.Get("q")),
		Region:      v.Get("region"),
		CompanyName: v.Get("companyName"),
		VATNumber:   v.Get("vatNumber"),
		ReferredBy:  v.Get("referredBy"),
		Type:        v.Get("type"),
		SortBy:      v.Get("sortBy"),
		SortDir:     v.Get("sortDir"),
		Limit:       atoiDefault(v.Get("limit"), 10),
		Page:        atoiDefault(v.Get("page"), 1),
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortDir == "" {
		q.SortDir = "desc"
	}

	var fields []fieldError
	switch v.Get("verified") {
	case "":
	case "true":
		t := true
		q.Verified = &t
	case "false":
		f := false
		q.Verified = &f
	default:
		fields = append(fields, fieldError{Field: "verified", Message: "must be true or false"})
	}
	if q.Type != "" && q.Type != "azienda" && q.Type != "persona" {
		fields = append(fields, fieldError{Field: "type", Message: "must be azienda or persona"})
	}
	if !sortKeys[q.SortBy] {
		fields = append(fields, fieldError{Field: "sortBy", Message: "unsupported sort field"})
	}
	if q.SortDir != "asc" && q.SortDir != "desc" {
		fields = append(fields, fieldError{Field: "sortDir", Message: "must be asc or desc"})
	}
	if q.Limit < 1 || q.Limit > 50 {
		fields = append(fields, fieldError{Field: "limit", Message: "must be between 1 and 50"})
	}
	if q.Page < 1 {
		fields = append(fields, fieldError{Field: "page", Message: "must be >= 1"})
	}
	return q, fields
}

// project keeps only the requested comma separated fields. _id is always
// returned.
func project(p Profile, fields string) interface{} {
	if strings.TrimSpace(fields) == "" {
		return p
	}
	raw, _ := json.Marshal(p)
	var all map[string]json.RawMessage
	_ = json.Unmarshal(raw, &all)

	out := map[string]json.RawMessage{"_id": all["_id"]}
	for _, f := range strings.Split(fields, ",") {
		f = strings.TrimSpace(f)
		if val, ok := all[f]; ok {
			out[f] = val
		}
	}
	return out
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
