package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	apierrors "github.com/Graziano10/referral-admin/client/internal/errors"
)

// Session is the part of the credential owner the transport needs.
type Session interface {
	Get() string
	// HandleUnauthorized receives the token the rejected request carried.
	HandleUnauthorized(sent string)
}

// Observer is told the outcome of every request. status is 0 when no
// response was received.
type Observer func(op string, status int)

// Transport holds the resty clients for the admin API. Both mark requests
// with X-Requested-With. authed also attaches the session and watches for
// 401; public is used for login only so a rejected password is never
// mistaken for an expired session.
type Transport struct {
	authed  *resty.Client
	public  *resty.Client
	observe Observer
}

// NewTransport builds both clients on top of hc. Timeouts and any debug
// transport live on hc.
func NewTransport(baseURL string, hc *http.Client, sess Session, observe Observer, logger zerolog.Logger) *Transport {
	if observe == nil {
		observe = func(string, int) {}
	}
	newClient := func() *resty.Client {
		return resty.NewWithClient(hc).
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetHeader("X-Requested-With", "XMLHttpRequest").
			SetLogger(restyLogger{l: logger})
	}
	authed := newClient().
		OnBeforeRequest(attachSession(sess)).
		OnAfterResponse(watchUnauthorized(sess))
	return &Transport{authed: authed, public: newClient(), observe: observe}
}

func attachSession(sess Session) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		if tok := sess.Get(); tok != "" {
			r.SetHeader("Authorization", "Bearer "+tok)
		}
		return nil
	}
}

func watchUnauthorized(sess Session) resty.ResponseMiddleware {
	return func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() == http.StatusUnauthorized {
			sent := strings.TrimPrefix(resp.Request.Header.Get("Authorization"), "Bearer ")
			sess.HandleUnauthorized(sent)
		}
		return nil
	}
}

// send executes r and returns the raw response, converting transport
// failures into network errors. Cancellation is returned as ctx.Err().
func (t *Transport) send(ctx context.Context, op string, r *resty.Request, method, path string) (*resty.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := r.SetContext(ctx).Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		t.observe(op, 0)
		return nil, apierrors.NewNetworkError(op, err)
	}
	t.observe(op, resp.StatusCode())
	return resp, nil
}

// do is send plus normalization of non-2xx responses and JSON decoding
// into out.
func (t *Transport) do(ctx context.Context, op string, r *resty.Request, method, path string, out any) error {
	resp, err := t.send(ctx, op, r, method, path)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return apierrors.NewHTTPError(op, resp.StatusCode(), resp.Body())
	}
	return decode(op, resp.Body(), out)
}

func decode(op string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// restyLogger routes resty's own warnings into zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
