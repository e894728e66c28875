package profiletwin

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
)

// ErrNotFound is returned for unknown profile ids.
var ErrNotFound = errors.New("profile not found")

// Store holds profiles in memory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewStore returns a store preloaded with profiles.
func NewStore(profiles ...Profile) *Store {
	s := &Store{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

// Put inserts or replaces a profile.
func (s *Store) Put(p Profile) {
	s.mu.Lock()
	s.profiles[p.ID] = p
	s.mu.Unlock()
}

// Len returns the number of stored profiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Get returns the profile with id.
func (s *Store) Get(id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// Delete removes the profile with id and returns it.
func (s *Store) Delete(id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	delete(s.profiles, id)
	return p, nil
}

// List filters, sorts and paginates. TotalPages is never below 1.
func (s *Store) List(q ListQuery) ListPage {
	s.mu.RLock()
	matched := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if q.matches(p) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sortProfiles(matched, q.SortBy, q.SortDir == "asc")

	total := len(matched)
	pages := (total + q.Limit - 1) / q.Limit
	if pages < 1 {
		pages = 1
	}
	start := (q.Page - 1) * q.Limit
	docs := []Profile{}
	if start < total {
		end := start + q.Limit
		if end > total {
			end = total
		}
		docs = matched[start:end]
	}
	return ListPage{Docs: docs, TotalDocs: total, TotalPages: pages, Page: q.Page, Limit: q.Limit}
}

// ReferralsOf pages through the emails of profiles whose referredBy equals
// code, oldest first.
func (s *Store) ReferralsOf(code string, page, limit int) Referrals {
	var refs []Profile
	if code != "" {
		s.mu.RLock()
		for _, p := range s.profiles {
			if p.ReferredBy == code {
				refs = append(refs, p)
			}
		}
		s.mu.RUnlock()
	}
	sortProfiles(refs, "createdAt", true)

	out := Referrals{Total: len(refs), Page: page, Limit: limit, Emails: []string{}}
	start := (page - 1) * limit
	for i := start; i < len(refs) && i < start+limit; i++ {
		out.Emails = append(out.Emails, refs[i].Email)
	}
	out.Count = len(out.Emails)
	return out
}

func (q ListQuery) matches(p Profile) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		hay := strings.ToLower(strings.Join([]string{
			p.FirstName, p.LastName, p.Email, p.CompanyName, p.ReferralCode, p.Phone,
		}, " "))
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	if q.Region != "" && !strings.EqualFold(p.Region, q.Region) {
		return false
	}
	if q.CompanyName != "" && !strings.Contains(strings.ToLower(p.CompanyName), strings.ToLower(q.CompanyName)) {
		return false
	}
	if q.VATNumber != "" && p.VATNumber != q.VATNumber {
		return false
	}
	if q.ReferredBy != "" && p.ReferredBy != q.ReferredBy {
		return false
	}
	switch q.Type {
	case "azienda":
		if p.Type != TypeCompany {
			return false
		}
	case "persona":
		if p.Type != TypeIndividual {
			return false
		}
	}
	if q.Verified != nil && p.Verified != *q.Verified {
		return false
	}
	return true
}

func sortProfiles(ps []Profile, by string, asc bool) {
	less := func(a, b Profile) int {
		switch by {
		case "firstName":
			return strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName))
		case "lastName":
			return strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName))
		case "email":
			return strings.Compare(a.Email, b.Email)
		case "companyName":
			return strings.Compare(strings.ToLower(a.CompanyName), strings.ToLower(b.CompanyName))
		case "dateJoined":
			return compareTime(&a.DateJoined, &b.DateJoined)
		case "lastLogin":
			return compareTime(a.LastLogin, b.LastLogin)
		case "lastActivity":
			return compareTime(a.LastActivity, b.LastActivity)
		default:
			return compareTime(&a.CreatedAt, &b.CreatedAt)
		}
	}
	sort.SliceStable(ps, func(i, j int) bool {
		c := less(ps[i], ps[j])
		if c == 0 {
			// Stable order across requests so pages never overlap.
			c = strings.Compare(ps[i].ID, ps[j].ID)
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func compareTime(a, b *strfmt.DateTime) int {
	var ta, tb time.Time
	if a != nil {
		ta = time.Time(*a)
	}
	if b != nil {
		tb = time.Time(*b)
	}
	return ta.Compare(tb)
}
