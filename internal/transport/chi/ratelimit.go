package chi

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/pdfocr/internal/domain"
)

// RateLimitMiddleware rejects clients over their request budget with 429.
// With keyByToken set (auth enabled, tokens already verified) clients are keyed
// by a hash of their bearer token; otherwise by remote IP, so unverified tokens
// cannot mint fresh budgets. A nil limiter disables rate limiting.
func RateLimitMiddleware(limiter Limiter, keyByToken bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			d, err := limiter.Allow(r.Context(), clientKey(r, keyByToken))
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Reset.IsZero() {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
			}

			if errors.Is(err, domain.ErrRateLimited) {
				retry := int(time.Until(d.Reset).Seconds()) + 1
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, ErrorCodeRateLimited, domain.ErrRateLimited.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey never embeds the raw token: it ends up in the counter key space.
func clientKey(r *http.Request, keyByToken bool) string {
	const bearerPrefix = "Bearer "
	if auth := r.Header.Get("Authorization"); keyByToken && strings.HasPrefix(auth, bearerPrefix) && len(auth) > len(bearerPrefix) {
		sum := sha256.Sum256([]byte(auth[len(bearerPrefix):]))
		return "key:" + hex.EncodeToString(sum[:8])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
