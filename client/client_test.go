package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Graziano10/referral-admin/internal/profiletwin"
	"github.com/Graziano10/referral-admin/session"
)

type twinEnv struct {
	twin    *profiletwin.Server
	client  *Client
	session *session.Manager
}

func newTwinEnv(t *testing.T, profiles []profiletwin.Profile, opts ...Option) *twinEnv {
	t.Helper()
	twin := profiletwin.NewServer(profiletwin.NewStore(profiles...), "admin@example.com", "secret", zerolog.Nop())
	srv := httptest.NewServer(twin.Handler())
	t.Cleanup(srv.Close)

	mgr, err := session.NewManager(context.Background(), &session.MemoryStore{})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	c, err := New(srv.URL, mgr, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return &twinEnv{twin: twin, client: c, session: mgr}
}

func (e *twinEnv) login(t *testing.T) {
	t.Helper()
	if _, err := e.client.Login(context.Background(), "admin@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	mgr, _ := session.NewManager(context.Background(), &session.MemoryStore{})
	for _, u := range []string{"", "localhost:3000", "ftp://x", "http://"} {
		if _, err := New(u, mgr); err == nil {
			t.Fatalf("expected error for base URL %q", u)
		}
	}
	if _, err := New("http://localhost:3000", nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
	if _, err := New("http://localhost:3000", mgr, WithHTTPTimeout(0)); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestLogin_PersistsTokenAndNormalizesEmail(t *testing.T) {
	env := newTwinEnv(t, nil)
	prof, err := env.client.Login(context.Background(), "  ADMIN@example.com ", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if prof.Email != "admin@example.com" {
		t.Fatalf("profile email %q", prof.Email)
	}
	if !env.session.Authenticated() {
		t.Fatal("token not persisted")
	}
}

func TestLogin_FailurePersistsNothing(t *testing.T) {
	env := newTwinEnv(t, nil)
	_, err := env.client.Login(context.Background(), "admin@example.com", "wrong")
	if k, _ := KindOf(err); k != KindAuthentication {
		t.Fatalf("kind = %v (%v)", k, err)
	}
	if Message(err) != "invalid credentials" {
		t.Fatalf("message = %q", Message(err))
	}
	if env.session.Authenticated() {
		t.Fatal("failed login must not persist a token")
	}

	_, err = env.client.Login(context.Background(), "not-an-email", "")
	if k, _ := KindOf(err); k != KindValidation {
		t.Fatalf("kind = %v (%v)", k, err)
	}
}

func TestListGetDelete_AgainstTwin(t *testing.T) {
	profiles := profiletwin.Seed(23, 3)
	env := newTwinEnv(t, profiles)
	env.login(t)
	ctx := context.Background()

	page, err := env.client.ListProfiles(ctx, ProfileQuery{})
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if page.TotalDocs != 23 || page.TotalPages != 3 || len(page.Docs) != 10 {
		t.Fatalf("unexpected page %+v", page)
	}

	id := page.Docs[0].ID
	detail, err := env.client.GetProfile(ctx, id, DetailOptions{Limit: 5})
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if detail.Profile.ID != id || !detail.OK {
		t.Fatalf("unexpected detail %+v", detail)
	}

	del, err := env.client.DeleteProfile(ctx, id)
	if err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if del.Profile.ID != id {
		t.Fatalf("deleted %q, want %q", del.Profile.ID, id)
	}
	if _, err := env.client.GetProfile(ctx, id, DetailOptions{}); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProfiles_InvalidQueryNotSent(t *testing.T) {
	env := newTwinEnv(t, nil)
	env.login(t)
	_, err := env.client.ListProfiles(context.Background(), ProfileQuery{PageSize: 15})
	if k, _ := KindOf(err); k != KindValidation {
		t.Fatalf("kind = %v (%v)", k, err)
	}
}

func TestUnauthorized_ClearsSessionAndNotifiesOnce(t *testing.T) {
	env := newTwinEnv(t, profiletwin.Seed(5, 1))
	env.login(t)

	var fired int32
	env.session.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) })
	env.twin.RevokeAll()

	ctx := context.Background()
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := env.client.ListProfiles(ctx, ProfileQuery{})
			errs <- err
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-errs; err != nil && !IsUnauthorized(err) {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("observer fired %d times", fired)
	}
	if env.session.Authenticated() {
		t.Fatal("session should be cleared")
	}
}

func TestLogout(t *testing.T) {
	env := newTwinEnv(t, nil)
	env.login(t)
	if err := env.client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if env.session.Authenticated() {
		t.Fatal("still authenticated")
	}
	if _, err := env.client.ListProfiles(context.Background(), ProfileQuery{}); !IsUnauthorized(err) {
		t.Fatalf("expected 401 after logout, got %v", err)
	}
}

func TestDeleteProfiles_Bulk(t *testing.T) {
	profiles := profiletwin.Seed(6, 9)
	env := newTwinEnv(t, profiles, WithBulkConfig(BulkConfig{
		Shards: 2, QueueSize: 8, MaxAttempts: 2, BaseBackoff: time.Millisecond, MaxInterval: time.Millisecond,
	}))
	env.login(t)

	ids := []string{profiles[0].ID, profiles[1].ID, profiles[0].ID, "missing"}
	results := env.client.DeleteProfiles(context.Background(), ids)
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3 (duplicates collapsed)", len(results))
	}
	for _, r := range results[:2] {
		if r.Err != nil || r.Deleted == nil || r.Deleted.ID != r.ID || r.Attempts != 1 {
			t.Fatalf("unexpected result %+v", r)
		}
	}
	miss := results[2]
	if !IsNotFound(miss.Err) || miss.Attempts != 1 {
		t.Fatalf("missing id: %+v", miss)
	}
	if env.twin.Store().Len() != 4 {
		t.Fatalf("store has %d profiles", env.twin.Store().Len())
	}
}

func TestDeleteProfiles_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"message":"ok","profile":{"_id":"p1","email":"p@x.it"}}`))
	}))
	defer srv.Close()

	mgr, _ := session.NewManager(context.Background(), &session.MemoryStore{})
	c, err := New(srv.URL, mgr, WithLogger(zerolog.Nop()), WithBulkConfig(BulkConfig{
		Shards: 1, QueueSize: 4, MaxAttempts: 4, BaseBackoff: time.Millisecond, MaxInterval: time.Millisecond,
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	res := c.DeleteProfiles(context.Background(), []string{"p1"})
	if res[0].Err != nil || res[0].Attempts != 3 {
		t.Fatalf("unexpected %+v", res[0])
	}
}

func TestDeleteProfiles_CloseDuringRetryReturns(t *testing.T) {
	firstHit := make(chan struct{})
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			close(firstHit)
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	mgr, _ := session.NewManager(context.Background(), &session.MemoryStore{})
	c, err := New(srv.URL, mgr, WithLogger(zerolog.Nop()), WithBulkConfig(BulkConfig{
		Shards: 1, QueueSize: 4, MaxAttempts: 10, BaseBackoff: 2 * time.Second, MaxInterval: 2 * time.Second,
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan []DeleteResult, 1)
	go func() { done <- c.DeleteProfiles(context.Background(), []string{"a"}) }()

	<-firstHit
	time.Sleep(50 * time.Millisecond)
	_ = c.Close()

	select {
	case res := <-done:
		if res[0].Err == nil {
			t.Fatalf("interrupted delete reported success: %+v", res[0])
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("DeleteProfiles still blocked after Close (hits=%d)", atomic.LoadInt32(&hits))
	}
}

func TestDeleteProfiles_AfterClose(t *testing.T) {
	env := newTwinEnv(t, nil)
	_ = env.client.Close()
	_ = env.client.Close()
	res := env.client.DeleteProfiles(context.Background(), []string{"a"})
	if !errors.Is(res[0].Err, ErrClosed) {
		t.Fatalf("got %v", res[0].Err)
	}
}
