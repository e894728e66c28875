package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/strfmt"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// PersonType is how a profile is registered on the wire.
type PersonType string

const (
	PersonTypeIndividual PersonType = "PersonaFisica"
	PersonTypeCompany    PersonType = "Azienda"
)

// FlexibleID accepts either a JSON number or a JSON string. The backend
// emits user_id as a number on detail and as a string on listings.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user_id: %w", err)
	}
	*f = FlexibleID(n.String())
	return nil
}

// ProfileSummary is one row of the directory listing.
type ProfileSummary struct {
	ID             string           `json:"_id"`
	UserID         FlexibleID       `json:"user_id,omitempty"`
	FirstName      string           `json:"firstName,omitempty"`
	LastName       string           `json:"lastName,omitempty"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone,omitempty"`
	Type           PersonType       `json:"type,omitempty"`
	CompanyName    string           `json:"companyName,omitempty"`
	VATNumber      string           `json:"vatNumber,omitempty"`
	Region         string           `json:"region,omitempty"`
	Role           string           `json:"role,omitempty"`
	Verified       bool             `json:"verified"`
	ReferralCode   string           `json:"referralCode,omitempty"`
	ReferredBy     string           `json:"referredBy,omitempty"`
	ReferralsCount *int             `json:"referralsCount,omitempty"`
	DateJoined     *strfmt.DateTime `json:"dateJoined,omitempty"`
	CreatedAt      *strfmt.DateTime `json:"createdAt,omitempty"`
	UpdatedAt      *strfmt.DateTime `json:"updatedAt,omitempty"`
}

// DisplayName joins first and last name, falling back to the email.
func (p ProfileSummary) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	default:
		return p.Email
	}
}

// ReferralPage is one page of the emails referred by a profile.
type ReferralPage struct {
	Total  int      `json:"total"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
	Count  int      `json:"count"`
	Emails []string `json:"emails"`
}

// ProfileDetail is a profile plus the referrals attributed to it.
type ProfileDetail struct {
	OK        bool           `json:"ok"`
	Profile   ProfileSummary `json:"profile"`
	Referrals ReferralPage   `json:"referrals"`
}

// ReferralCount is the number of confirmed referrals for the profile.
func (d ProfileDetail) ReferralCount() int {
	return d.Referrals.Total
}

// SessionProfile is the identity returned by a successful login.
type SessionProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DeletedProfile identifies a profile removed by a delete call.
type DeletedProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UnmarshalJSON accepts either "_id" or "id".
func (d *DeletedProfile) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Email   string `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.ID = raw.ID
	if d.ID == "" {
		d.ID = raw.MongoID
	}
	d.Email = raw.Email
	return nil
}
