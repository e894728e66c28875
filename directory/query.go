// Package directory holds the state behind the profile directory view: the
// current query, the list and detail state machines, and the coordinator
// that ties them to the API client. It also builds full exports.
package directory

import (
	"fmt"
	"strings"

	"github.com/Graziano10/referral-admin/client"
)

// Query is an immutable directory query. Every With method except WithPage
// returns a copy positioned on page 1, so a filter change can never leave
// the view on a page that no longer exists.
type Query struct {
	p client.ProfileQuery
}

// NewQuery returns the default query: newest first, 10 per page, page 1.
func NewQuery() Query {
	return Query{p: client.DefaultProfileQuery()}
}

// Params returns the query as sent to the API.
func (q Query) Params() client.ProfileQuery { return q.p }

func (q Query) Search() string                  { return q.p.Search }
func (q Query) Region() string                  { return q.p.Region }
func (q Query) PersonType() client.PersonFilter { return q.p.PersonType }
func (q Query) Verified() client.VerifiedFilter { return q.p.Verified }
func (q Query) SortField() client.SortField     { return q.p.SortField }
func (q Query) SortDir() client.SortDirection   { return q.p.SortDir }
func (q Query) PageSize() int                   { return q.p.PageSize }
func (q Query) Page() int                       { return q.p.Page }

func (q Query) reset() Query {
	q.p.Page = 1
	return q
}

func (q Query) WithSearch(s string) Query {
	q.p.Search = s
	return q.reset()
}

func (q Query) WithRegion(r string) Query {
	q.p.Region = r
	return q.reset()
}

func (q Query) WithCompanyName(s string) Query {
	q.p.CompanyName = s
	return q.reset()
}

func (q Query) WithVATNumber(s string) Query {
	q.p.VATNumber = s
	return q.reset()
}

func (q Query) WithReferredBy(code string) Query {
	q.p.ReferredBy = code
	return q.reset()
}

func (q Query) WithPersonType(t client.PersonFilter) Query {
	q.p.PersonType = t
	return q.reset()
}

func (q Query) WithVerified(v client.VerifiedFilter) Query {
	q.p.Verified = v
	return q.reset()
}

func (q Query) WithSort(f client.SortField, d client.SortDirection) Query {
	q.p.SortField = f
	q.p.SortDir = d
	return q.reset()
}

func (q Query) WithPageSize(n int) Query {
	q.p.PageSize = n
	return q.reset()
}

// WithPage moves to page n and leaves every other field alone.
func (q Query) WithPage(n int) Query {
	q.p.Page = n
	return q
}

// ParseSort parses "field:dir" as used by the sort selector. The direction
// defaults to desc when omitted.
func ParseSort(s string) (client.SortField, client.SortDirection, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(s), ":")
	f := client.SortField(field)
	known := false
	for _, k := range client.SortFields {
		if k == f {
			known = true
			break
		}
	}
	if !known {
		return "", "", fmt.Errorf("unknown sort field %q", field)
	}
	switch client.SortDirection(dir) {
	case "":
		return f, client.SortDesc, nil
	case client.SortAsc, client.SortDesc:
		return f, client.SortDirection(dir), nil
	default:
		return "", "", fmt.Errorf("unknown sort direction %q", dir)
	}
}
