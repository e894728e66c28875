package api

import (
	"context"
	"net/http"

	apierrors "github.com/Graziano10/referral-admin/client/internal/errors"
	"github.com/Graziano10/referral-admin/client/internal/types"
)

const opLogin = "login"

// Login exchanges admin credentials for a token. The request goes through
// the public client: no bearer is attached and a 401 here does not end any
// existing session.
func (t *Transport) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	r := t.public.R().
		SetHeader("Content-Type", "application/json").
		SetBody(req)
	resp, err := t.send(ctx, opLogin, r, http.MethodPost, "/profile/login")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, apierrors.NewLoginError(opLogin, resp.StatusCode(), resp.Body())
	}
	var out types.LoginResponse
	if err := decode(opLogin, resp.Body(), &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &apierrors.APIError{
			Kind:       apierrors.KindServer,
			Category:   apierrors.Irrecoverable,
			Op:         opLogin,
			StatusCode: resp.StatusCode(),
			Message:    "login response carried no token",
			RawBody:    resp.Body(),
		}
	}
	return &out, nil
}
