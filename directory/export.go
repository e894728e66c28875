package directory

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/Graziano10/referral-admin/client"
)

// ExportOptions tunes BuildExportBundle. Zero values take defaults.
type ExportOptions struct {
	PageSize    int           // default client.MaxPageSize
	MaxAttempts int           // per page, default 3
	BaseBackoff time.Duration // default 200ms
	// OnPage, if set, is called after each page with the page number and the
	// totalPages reported by that response.
	OnPage func(page, totalPages int)
}

func (o ExportOptions) withDefaults() ExportOptions {
	if o.PageSize <= 0 {
		o.PageSize = client.MaxPageSize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = 200 * time.Millisecond
	}
	return o
}

// BuildExportBundle collects every profile matching q, ignoring its page
// and page size. Pages are requested from 1 upward and the loop ends once
// the page number passes the totalPages of the most recent response, so a
// dataset that grows or shrinks mid-export is still followed to its end.
// Recoverable failures of a page are retried with backoff.
func BuildExportBundle(ctx context.Context, l Lister, q Query, opts ExportOptions) ([]client.ProfileSummary, error) {
	opts = opts.withDefaults()
	params := q.WithPageSize(opts.PageSize).Params()

	var docs []client.ProfileSummary
	for page := 1; ; page++ {
		params.Page = page
		resp, err := fetchPage(ctx, l, params, opts)
		if err != nil {
			return nil, fmt.Errorf("export page %d: %w", page, err)
		}
		docs = append(docs, resp.Docs...)
		if opts.OnPage != nil {
			opts.OnPage(page, resp.TotalPages)
		}
		if page >= resp.TotalPages || (len(resp.Docs) == 0 && page > 1) {
			break
		}
	}
	return docs, nil
}

func fetchPage(ctx context.Context, l Lister, params client.ProfileQuery, opts ExportOptions) (*client.ListProfilesResponse, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = opts.BaseBackoff
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(opts.MaxAttempts-1)), ctx)

	var resp *client.ListProfilesResponse
	err := backoff.Retry(func() error {
		r, err := l.ListProfiles(ctx, params)
		if err != nil {
			if client.IsIrrecoverable(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}, policy)
	return resp, err
}
