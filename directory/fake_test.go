package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Graziano10/referral-admin/client"
)

// fakeDir serves a fixed dataset with real pagination. Hooks let tests
// delay or fail individual calls.
type fakeDir struct {
	mu       sync.Mutex
	profiles []client.ProfileSummary
	calls    []client.ProfileQuery

	// before, if set, runs before a list request is answered.
	before func(q client.ProfileQuery) error
	detail func(id string) (*client.ProfileDetail, error)
}

func newFakeDir(n int) *fakeDir {
	f := &fakeDir{}
	for i := 0; i < n; i++ {
		f.profiles = append(f.profiles, client.ProfileSummary{
			ID:           fmt.Sprintf("p%03d", i),
			Email:        fmt.Sprintf("user%03d@example.com", i),
			ReferralCode: fmt.Sprintf("REF%03d", i),
		})
	}
	return f
}

func (f *fakeDir) ListProfiles(_ context.Context, q client.ProfileQuery) (*client.ListProfilesResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	before := f.before
	f.mu.Unlock()
	if before != nil {
		if err := before(q); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make([]client.ProfileSummary, len(f.profiles))
	copy(docs, f.profiles)
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	total := len(docs)
	pages := (total + q.PageSize - 1) / q.PageSize
	if pages < 1 {
		pages = 1
	}
	start := (q.Page - 1) * q.PageSize
	out := []client.ProfileSummary{}
	if start < total {
		end := start + q.PageSize
		if end > total {
			end = total
		}
		out = docs[start:end]
	}
	return &client.ListProfilesResponse{Docs: out, TotalDocs: total, TotalPages: pages, Page: q.Page, Limit: q.PageSize}, nil
}

func (f *fakeDir) GetProfile(_ context.Context, id string, _ client.DetailOptions) (*client.ProfileDetail, error) {
	if f.detail != nil {
		return f.detail(id)
	}
	return &client.ProfileDetail{OK: true, Profile: client.ProfileSummary{ID: id}}, nil
}

func (f *fakeDir) DeleteProfile(_ context.Context, id string) (*client.DeleteProfileResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.profiles {
		if p.ID == id {
			f.profiles = append(f.profiles[:i], f.profiles[i+1:]...)
			return &client.DeleteProfileResponse{Message: "deleted", Profile: client.DeletedProfile{ID: id, Email: p.Email}}, nil
		}
	}
	return nil, &client.APIError{Kind: client.KindNotFound, Category: client.Irrecoverable, StatusCode: 404, Message: "profile not found"}
}

func (f *fakeDir) listCalls() []client.ProfileQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.ProfileQuery(nil), f.calls...)
}
