// Package profiletwin is an in-memory stand-in for the referral admin API.
// It serves the same routes and JSON shapes so the client and the CLI can
// be developed and tested without the real backend.
package profiletwin

import (
	"github.com/go-openapi/strfmt"
)

// Person types as stored by the backend.
const (
	TypeIndividual = "PersonaFisica"
	TypeCompany    = "Azienda"
)

// Profile is one registered user.
type Profile struct {
	ID           string           `json:"_id" yaml:"id"`
	UserID       int              `json:"user_id" yaml:"user_id"`
	FirstName    string           `json:"firstName,omitempty" yaml:"firstName"`
	LastName     string           `json:"lastName,omitempty" yaml:"lastName"`
	Email        string           `json:"email" yaml:"email"`
	Phone        string           `json:"phone,omitempty" yaml:"phone"`
	Type         string           `json:"type,omitempty" yaml:"type"`
	CompanyName  string           `json:"companyName,omitempty" yaml:"companyName"`
	VATNumber    string           `json:"vatNumber,omitempty" yaml:"vatNumber"`
	Region       string           `json:"region,omitempty" yaml:"region"`
	Role         string           `json:"role,omitempty" yaml:"role"`
	Verified     bool             `json:"verified" yaml:"verified"`
	ReferralCode string           `json:"referralCode,omitempty" yaml:"referralCode"`
	ReferredBy   string           `json:"referredBy,omitempty" yaml:"referredBy"`
	DateJoined   strfmt.DateTime  `json:"dateJoined" yaml:"dateJoined"`
	LastLogin    *strfmt.DateTime `json:"lastLogin,omitempty" yaml:"lastLogin"`
	LastActivity *strfmt.DateTime `json:"lastActivity,omitempty" yaml:"lastActivity"`
	CreatedAt    strfmt.DateTime  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    strfmt.DateTime  `json:"updatedAt" yaml:"updatedAt"`
}

// ListQuery is a parsed GET /profile request.
type ListQuery struct {
	Search      string
	Region      string
	CompanyName string
	VATNumber   string
	ReferredBy  string
	Type        string // "azienda", "persona" or ""
	Verified    *bool
	SortBy      string
	SortDir     string
	Limit       int
	Page        int
}

// ListPage is the body of GET /profile.
type ListPage struct {
	Docs       []Profile `json:"docs"`
	TotalDocs  int       `json:"totalDocs"`
	TotalPages int       `json:"totalPages"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
}

// Referrals is the paginated list of emails a profile referred.
type Referrals struct {
	Total  int      `json:"total"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
	Count  int      `json:"count"`
	Emails []string `json:"emails"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
