package client

import "github.com/Graziano10/referral-admin/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	ProfileQuery   = types.ProfileQuery
	DetailOptions  = types.DetailOptions
	SortField      = types.SortField
	SortDirection  = types.SortDirection
	PersonFilter   = types.PersonFilter
	VerifiedFilter = types.VerifiedFilter

	// Domain entities
	ProfileSummary = types.ProfileSummary
	ProfileDetail  = types.ProfileDetail
	ReferralPage   = types.ReferralPage
	SessionProfile = types.SessionProfile
	DeletedProfile = types.DeletedProfile
	PersonType     = types.PersonType
	FlexibleID     = types.FlexibleID

	// Responses
	ListProfilesResponse  = types.ListProfilesResponse
	DeleteProfileResponse = types.DeleteProfileResponse
)

const (
	SortCreatedAt    = types.SortCreatedAt
	SortDateJoined   = types.SortDateJoined
	SortLastLogin    = types.SortLastLogin
	SortLastActivity = types.SortLastActivity
	SortFirstName    = types.SortFirstName
	SortLastName     = types.SortLastName
	SortEmail        = types.SortEmail
	SortCompanyName  = types.SortCompanyName

	SortAsc  = types.SortAsc
	SortDesc = types.SortDesc

	PersonAny        = types.PersonAny
	PersonCompany    = types.PersonCompany
	PersonIndividual = types.PersonIndividual

	VerifiedAny    = types.VerifiedAny
	VerifiedOnly   = types.VerifiedOnly
	UnverifiedOnly = types.UnverifiedOnly

	PersonTypeIndividual = types.PersonTypeIndividual
	PersonTypeCompany    = types.PersonTypeCompany

	DefaultPageSize = types.DefaultPageSize
	MaxPageSize     = types.MaxPageSize
)

// SortFields lists every accepted sort key.
var SortFields = types.SortFields

// PageSizes lists every accepted page size.
var PageSizes = types.PageSizes

// DefaultProfileQuery is the listing shown when nothing has been chosen yet.
func DefaultProfileQuery() ProfileQuery { return types.DefaultProfileQuery() }
