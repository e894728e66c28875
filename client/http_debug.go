package client

import (
	"net/http"
	"net/http/httputil"
	"os"
	"regexp"

	"github.com/rs/zerolog/log"
)

// debugTransport dumps every request and response at debug level.
//
// Enable it with REFERRAL_DEBUG=true, DEBUG=true or WithDebugLogging. The
// Authorization header and any "token" JSON field are redacted, but profile
// data is logged as is, so keep it out of production.
type debugTransport struct{ base http.RoundTripper }

var (
	authHeaderRe = regexp.MustCompile(`(?mi)^(Authorization:).*$`)
	tokenFieldRe = regexp.MustCompile(`("token"\s*:\s*)"[^"]*"`)
)

func redact(dump []byte) string {
	out := authHeaderRe.ReplaceAll(dump, []byte("$1 [redacted]"))
	out = tokenFieldRe.ReplaceAll(out, []byte(`$1"[redacted]"`))
	return string(out)
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}

	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", redact(reqDump)).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", redact(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested reports whether REFERRAL_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("REFERRAL_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
