package directory

import (
	"context"
	"errors"
	"sync"

	"github.com/Graziano10/referral-admin/client"
	"github.com/Graziano10/referral-admin/rank"
)

// Lister is the listing half of the API client.
type Lister interface {
	ListProfiles(ctx context.Context, q client.ProfileQuery) (*client.ListProfilesResponse, error)
}

// Directory is everything the coordinator needs from the API client.
// *client.Client implements it.
type Directory interface {
	Lister
	GetProfile(ctx context.Context, id string, opts client.DetailOptions) (*client.ProfileDetail, error)
	DeleteProfile(ctx context.Context, id string) (*client.DeleteProfileResponse, error)
}

var _ Directory = (*client.Client)(nil)

// Coordinator owns the query, list and detail state of one directory view.
//
// Fetches may overlap. Each request takes a sequence number when issued and
// its response is applied only if no newer request was issued meanwhile,
// regardless of the order in which responses arrive.
type Coordinator struct {
	dir   Directory
	ranks *rank.Table

	mu        sync.Mutex
	query     Query
	list      ListState
	detail    DetailState
	listSeq   uint64
	detailSeq uint64
}

// NewCoordinator starts Idle with initial as the current query. A nil
// table means rank.Default.
func NewCoordinator(dir Directory, ranks *rank.Table, initial Query) *Coordinator {
	if ranks == nil {
		ranks = rank.Default
	}
	return &Coordinator{dir: dir, ranks: ranks, query: initial, list: ListState{Query: initial}}
}

// Query returns the current query.
func (c *Coordinator) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// List returns a snapshot of the list state.
func (c *Coordinator) List() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list
}

// Detail returns a snapshot of the detail state.
func (c *Coordinator) Detail() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail
}

// Update applies change to the current query and fetches the result. It
// returns ErrStale when a later Update or Refresh superseded this one.
func (c *Coordinator) Update(ctx context.Context, change func(Query) Query) error {
	c.mu.Lock()
	c.query = change(c.query)
	q, seq := c.beginListLocked()
	c.mu.Unlock()
	return c.fetchList(ctx, q, seq)
}

// Refresh fetches the current query again.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.Update(ctx, func(q Query) Query { return q })
}

func (c *Coordinator) beginListLocked() (Query, uint64) {
	c.listSeq++
	c.list = ListState{Status: Loading, Query: c.query}
	return c.query, c.listSeq
}

func (c *Coordinator) fetchList(ctx context.Context, q Query, seq uint64) error {
	resp, err := c.dir.ListProfiles(ctx, q.Params())

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.listSeq {
		return ErrStale
	}
	if err != nil {
		c.list = ListState{Status: Errored, Query: q, Err: err}
		return err
	}
	c.list = ListState{Status: Loaded, Query: q, Page: resp}
	return nil
}

// Open fetches the detail of profile id and resolves its rank. Every call
// goes to the server; nothing is cached between selections.
func (c *Coordinator) Open(ctx context.Context, id string, opts client.DetailOptions) error {
	c.mu.Lock()
	c.detailSeq++
	seq := c.detailSeq
	c.detail = DetailState{Status: Loading, ID: id}
	c.mu.Unlock()

	d, err := c.dir.GetProfile(ctx, id, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.detailSeq {
		return ErrStale
	}
	if err != nil {
		c.detail = DetailState{Status: Errored, ID: id, Err: err}
		return err
	}
	p := c.ranks.Progression(d.ReferralCount())
	c.detail = DetailState{Status: Loaded, ID: id, Detail: d, Progression: &p}
	return nil
}

// Close discards the open detail. A fetch still in flight is ignored when
// it completes.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.detailSeq++
	c.detail = DetailState{}
	c.mu.Unlock()
}

// Delete removes a profile and re-queries the list, which stays the source
// of truth. If the current page no longer exists afterwards the view moves
// to the last page. On failure nothing local changes.
func (c *Coordinator) Delete(ctx context.Context, id string) (*client.DeletedProfile, error) {
	resp, err := c.dir.DeleteProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.detail.ID == id {
		c.detailSeq++
		c.detail = DetailState{}
	}
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		return &resp.Profile, superseded(err)
	}

	st := c.List()
	if st.Page != nil && len(st.Page.Docs) == 0 && st.Query.Page() > 1 && st.Page.TotalPages < st.Query.Page() {
		last := st.Page.TotalPages
		if last < 1 {
			last = 1
		}
		if err := c.Update(ctx, func(q Query) Query { return q.WithPage(last) }); err != nil {
			return &resp.Profile, superseded(err)
		}
	}
	return &resp.Profile, nil
}

// superseded drops ErrStale: a newer query owns the view and the delete
// itself succeeded.
func superseded(err error) error {
	if errors.Is(err, ErrStale) {
		return nil
	}
	return err
}
