package types

import (
	"net/url"
	"strconv"
)

// ------------------------------
// Request Types
// ------------------------------

// LoginRequest holds the admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SortField is a server-side sort key for the profile listing.
type SortField string

const (
	SortCreatedAt    SortField = "createdAt"
	SortDateJoined   SortField = "dateJoined"
	SortLastLogin    SortField = "lastLogin"
	SortLastActivity SortField = "lastActivity"
	SortFirstName    SortField = "firstName"
	SortLastName     SortField = "lastName"
	SortEmail        SortField = "email"
	SortCompanyName  SortField = "companyName"
)

// SortFields lists every accepted sort key.
var SortFields = []SortField{
	SortCreatedAt, SortDateJoined, SortLastLogin, SortLastActivity,
	SortFirstName, SortLastName, SortEmail, SortCompanyName,
}

// SortDirection orders the listing.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PersonFilter narrows the listing to companies or individuals.
type PersonFilter string

const (
	PersonAny        PersonFilter = ""
	PersonCompany    PersonFilter = "azienda"
	PersonIndividual PersonFilter = "persona"
)

// VerifiedFilter narrows the listing by verification status.
type VerifiedFilter int

const (
	VerifiedAny VerifiedFilter = iota
	VerifiedOnly
	UnverifiedOnly
)

// Page sizes accepted by the listing endpoint.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// PageSizes lists every accepted page size.
var PageSizes = []int{10, 20, 50}

// ProfileQuery is the full set of parameters for one listing request.
type ProfileQuery struct {
	Search      string
	Region      string
	CompanyName string
	VATNumber   string
	ReferredBy  string
	PersonType  PersonFilter
	Verified    VerifiedFilter
	SortField   SortField
	SortDir     SortDirection
	PageSize    int
	Page        int
}

// DefaultProfileQuery is the listing shown when nothing has been chosen yet.
func DefaultProfileQuery() ProfileQuery {
	return ProfileQuery{
		SortField: SortCreatedAt,
		SortDir:   SortDesc,
		PageSize:  DefaultPageSize,
		Page:      1,
	}
}

// Values encodes the query as URL parameters. Empty filters are omitted.
func (q ProfileQuery) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("q", q.Search)
	set("region", q.Region)
	set("companyName", q.CompanyName)
	set("vatNumber", q.VATNumber)
	set("referredBy", q.ReferredBy)
	set("type", string(q.PersonType))
	switch q.Verified {
	case VerifiedOnly:
		v.Set("verified", "true")
	case UnverifiedOnly:
		v.Set("verified", "false")
	}
	set("sortBy", string(q.SortField))
	set("sortDir", string(q.SortDir))
	if q.PageSize > 0 {
		v.Set("limit", strconv.Itoa(q.PageSize))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// DetailOptions paginates the referral emails of a profile detail.
type DetailOptions struct {
	Page   int
	Limit  int
	Fields string // comma separated projection, e.g. "firstName,lastName,email"
}

// Values encodes the options as URL parameters. Zero values are omitted.
func (o DetailOptions) Values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Fields != "" {
		v.Set("fields", o.Fields)
	}
	return v
}
