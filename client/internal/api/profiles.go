package api

import (
	"context"
	"net/http"

	"github.com/Graziano10/referral-admin/client/internal/types"
)

const (
	opListProfiles  = "list profiles"
	opGetProfile    = "get profile"
	opDeleteProfile = "delete profile"
)

// ListProfiles fetches one page of the directory. q must already be
// normalized.
func (t *Transport) ListProfiles(ctx context.Context, q types.ProfileQuery) (*types.ListProfilesResponse, error) {
	r := t.authed.R().SetQueryParamsFromValues(q.Values())
	var out types.ListProfilesResponse
	if err := t.do(ctx, opListProfiles, r, http.MethodGet, "/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile fetches one profile with a page of its referrals.
func (t *Transport) GetProfile(ctx context.Context, id string, opts types.DetailOptions) (*types.ProfileDetail, error) {
	if err := types.ValidateIDPresent(id, "id"); err != nil {
		return nil, err
	}
	r := t.authed.R().
		SetPathParam("id", id).
		SetQueryParamsFromValues(opts.Values())
	var out types.ProfileDetail
	if err := t.do(ctx, opGetProfile, r, http.MethodGet, "/profile/{id}", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProfile removes a profile and returns what the server deleted.
func (t *Transport) DeleteProfile(ctx context.Context, id string) (*types.DeleteProfileResponse, error) {
	if err := types.ValidateIDPresent(id, "id"); err != nil {
		return nil, err
	}
	r := t.authed.R().SetPathParam("id", id)
	var out types.DeleteProfileResponse
	if err := t.do(ctx, opDeleteProfile, r, http.MethodDelete, "/profile/{id}", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
