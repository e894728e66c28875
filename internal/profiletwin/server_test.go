package profiletwin

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwin(t *testing.T, profiles ...Profile) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(NewStore(profiles...), "admin@example.com", "secret", zerolog.Nop())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func do(t *testing.T, method, url, token, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestLogin(t *testing.T) {
	_, srv := newTwin(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/profile/login", "", `{"email":" Admin@Example.com ","password":"secret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = do(t, http.MethodPost, srv.URL+"/profile/login", "", `{"email":"admin@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["message"])

	resp, body = do(t, http.MethodPost, srv.URL+"/profile/login", "", `{"email":"bad","password":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, body["errors"], 2)
}

func TestBearerRequired(t *testing.T) {
	s, srv := newTwin(t, Seed(3, 1)...)

	resp, body := do(t, http.MethodGet, srv.URL+"/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "session expired", body["message"])

	tok := s.Issue()
	resp, _ = do(t, http.MethodGet, srv.URL+"/profile", tok, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.RevokeAll()
	resp, _ = do(t, http.MethodGet, srv.URL+"/profile", tok, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListPagination(t *testing.T) {
	s, srv := newTwin(t, Seed(25, 7)...)
	tok := s.Issue()

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		resp, body := do(t, http.MethodGet, srv.URL+"/profile?limit=10&page="+strconv.Itoa(page), tok, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 25, body["totalDocs"])
		assert.EqualValues(t, 3, body["totalPages"])
		for _, d := range body["docs"].([]interface{}) {
			id := d.(map[string]interface{})["_id"].(string)
			assert.False(t, seen[id], "duplicate %s", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestListEmptyHasOnePage(t *testing.T) {
	s, srv := newTwin(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/profile", s.Issue(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["totalPages"])
	assert.Empty(t, body["docs"])
}

func TestListRejectsBadParams(t *testing.T) {
	s, srv := newTwin(t)
	tok := s.Issue()
	for _, q := range []string{"limit=0", "limit=51", "page=0", "sortBy=password", "sortDir=up", "type=x", "verified=maybe"} {
		resp, _ := do(t, http.MethodGet, srv.URL+"/profile?"+q, tok, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestListFilters(t *testing.T) {
	profiles := []Profile{
		{ID: "a", Email: "anna@example.com", FirstName: "Anna", Type: TypeIndividual, Region: "Lazio", Verified: true},
		{ID: "b", Email: "bob@example.com", CompanyName: "Alfa Srl", Type: TypeCompany, Region: "Veneto", ReferredBy: "REF1"},
		{ID: "c", Email: "carla@example.com", FirstName: "Carla", Type: TypeIndividual, Region: "lazio", ReferredBy: "REF1"},
	}
	s := NewStore(profiles...)

	ids := func(p ListPage) []string {
		var out []string
		for _, d := range p.Docs {
			out = append(out, d.ID)
		}
		return out
	}
	base := ListQuery{SortBy: "email", SortDir: "asc", Limit: 10, Page: 1}

	q := base
	q.Region = "LAZIO"
	assert.Equal(t, []string{"a", "c"}, ids(s.List(q)))

	q = base
	q.Type = "azienda"
	assert.Equal(t, []string{"b"}, ids(s.List(q)))

	q = base
	q.ReferredBy = "REF1"
	yes := true
	q.Verified = &yes
	assert.Empty(t, ids(s.List(q)))

	q = base
	q.Search = "ALFA"
	assert.Equal(t, []string{"b"}, ids(s.List(q)))

	q = base
	q.SortDir = "desc"
	assert.Equal(t, []string{"c", "b", "a"}, ids(s.List(q)))
}

func TestDetailAndReferrals(t *testing.T) {
	profiles := []Profile{
		{ID: "p", Email: "p@example.com", ReferralCode: "REFP"},
		{ID: "r1", Email: "r1@example.com", ReferredBy: "REFP"},
		{ID: "r2", Email: "r2@example.com", ReferredBy: "REFP"},
		{ID: "r3", Email: "r3@example.com", ReferredBy: "REFP"},
	}
	s, srv := newTwin(t, profiles...)
	tok := s.Issue()

	resp, body := do(t, http.MethodGet, srv.URL+"/profile/p?page=2&limit=2", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refs := body["referrals"].(map[string]interface{})
	assert.EqualValues(t, 3, refs["total"])
	assert.EqualValues(t, 1, refs["count"])

	resp, body = do(t, http.MethodGet, srv.URL+"/profile/p?fields=email", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prof := body["profile"].(map[string]interface{})
	assert.Equal(t, "p", prof["_id"])
	assert.Equal(t, "p@example.com", prof["email"])
	assert.NotContains(t, prof, "referralCode")

	resp, _ = do(t, http.MethodGet, srv.URL+"/profile/missing", tok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDelete(t *testing.T) {
	s, srv := newTwin(t, Profile{ID: "x", Email: "x@example.com"})
	tok := s.Issue()

	resp, body := do(t, http.MethodDelete, srv.URL+"/profile/x", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "x", body["profile"].(map[string]interface{})["_id"])
	assert.Zero(t, s.Store().Len())

	resp, _ = do(t, http.MethodDelete, srv.URL+"/profile/x", tok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSeedIsDeterministic(t *testing.T) {
	a, b := Seed(20, 42), Seed(20, 42)
	require.Equal(t, a, b)

	codes := map[string]bool{}
	for _, p := range a {
		codes[p.ReferralCode] = true
	}
	for _, p := range a {
		if p.ReferredBy != "" {
			assert.True(t, codes[p.ReferredBy], "dangling referrer %s", p.ReferredBy)
		}
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - email: one@example.com
    firstName: One
    referralCode: REF1
    verified: true
  - id: fixed
    email: two@example.com
    referredBy: REF1
`), 0o600))

	ps, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.NotEmpty(t, ps[0].ID)
	assert.Equal(t, "fixed", ps[1].ID)
	assert.Equal(t, "REF1", ps[1].ReferredBy)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("profiles:\n  - firstName: nobody\n"), 0o600))
	_, err = LoadSeedFile(bad)
	assert.Error(t, err)
}

func TestResolveConfig(t *testing.T) {
	t.Setenv("PROFILE_TWIN_PORT", "4100")
	t.Setenv("PROFILE_TWIN_SEED", "5")
	cfg, err := ResolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.Port)
	assert.Equal(t, 5, cfg.Seed)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
}

func TestHealth(t *testing.T) {
	_, srv := newTwin(t, Seed(4, 1)...)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body["status"])
	assert.EqualValues(t, 4, body["profiles"])
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := NewServer(NewStore(Seed(2, 1)...), "admin@example.com", "secret", zerolog.Nop())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, s.Handler(), zerolog.Nop()) }()

	resp, body := do(t, http.MethodGet, "http://"+ln.Addr().String()+"/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["profiles"])

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
