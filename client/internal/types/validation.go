package types

import (
	"slices"
	"strings"

	"github.com/go-openapi/strfmt"

	apierrors "github.com/Graziano10/referral-admin/client/internal/errors"
)

// ------------------------------
// Validation
// ------------------------------

// NormalizeLogin trims and lower-cases the email and checks both fields
// before anything is sent.
func NormalizeLogin(email, password string) (LoginRequest, error) {
	req := LoginRequest{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}
	var fields []apierrors.FieldError
	switch {
	case req.Email == "":
		fields = append(fields, apierrors.FieldError{Field: "email", Message: "email is required"})
	case !strfmt.IsEmail(req.Email):
		fields = append(fields, apierrors.FieldError{Field: "email", Message: "invalid email address"})
	}
	if req.Password == "" {
		fields = append(fields, apierrors.FieldError{Field: "password", Message: "password is required"})
	}
	if len(fields) > 0 {
		return LoginRequest{}, apierrors.NewValidationError("login", fields...)
	}
	return req, nil
}

// NormalizeQuery fills defaults for unset paging and sort parameters and
// rejects values the server would not accept.
func NormalizeQuery(q ProfileQuery) (ProfileQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.SortField == "" {
		q.SortField = SortCreatedAt
	}
	if q.SortDir == "" {
		q.SortDir = SortDesc
	}
	q.Search = strings.TrimSpace(q.Search)

	var fields []apierrors.FieldError
	if q.Page < 1 {
		fields = append(fields, apierrors.FieldError{Field: "page", Message: "must be >= 1"})
	}
	if !slices.Contains(PageSizes, q.PageSize) {
		fields = append(fields, apierrors.FieldError{Field: "limit", Message: "must be one of 10, 20, 50"})
	}
	if !slices.Contains(SortFields, q.SortField) {
		fields = append(fields, apierrors.FieldError{Field: "sortBy", Message: "unsupported sort field " + string(q.SortField)})
	}
	if q.SortDir != SortAsc && q.SortDir != SortDesc {
		fields = append(fields, apierrors.FieldError{Field: "sortDir", Message: "must be asc or desc"})
	}
	switch q.PersonType {
	case PersonAny, PersonCompany, PersonIndividual:
	default:
		fields = append(fields, apierrors.FieldError{Field: "type", Message: "must be azienda or persona"})
	}
	if q.Verified < VerifiedAny || q.Verified > UnverifiedOnly {
		fields = append(fields, apierrors.FieldError{Field: "verified", Message: "unknown verified filter"})
	}
	if len(fields) > 0 {
		return ProfileQuery{}, apierrors.NewValidationError("list profiles", fields...)
	}
	return q, nil
}

// ValidateIDPresent checks that a path identifier is non-empty.
func ValidateIDPresent(id, name string) error {
	if strings.TrimSpace(id) == "" {
		return apierrors.NewValidationError("", apierrors.FieldError{Field: name, Message: "is required"})
	}
	return nil
}
