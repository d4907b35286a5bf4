package visitor

import (
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the correlation id in both directions.
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
	maxReferralLength  = 128
)

var requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Info is what the funnel knows about the requester.
type Info struct {
	RequestID string
	ClientIP  string
	UserAgent string
	Referral  string
}

// FromRequest reads visitor metadata from r. The request id is generated
// when the header is missing or malformed.
func FromRequest(r *http.Request) Info {
	return Info{
		RequestID: requestID(r.Header.Get(RequestIDHeader)),
		ClientIP:  ClientIP(r),
		UserAgent: r.UserAgent(),
		Referral:  Referral(r),
	}
}

func requestID(id string) string {
	if id == "" || len(id) > maxRequestIDLength || !requestIDPattern.MatchString(id) {
		return uuid.NewString()
	}
	return id
}

// ClientIP returns the first valid address from, in order, CF-Connecting-IP,
// DO-Connecting-IP, X-Forwarded-For, X-Real-IP and RemoteAddr.
func ClientIP(r *http.Request) string {
	for _, h := range []string{"CF-Connecting-IP", "DO-Connecting-IP"} {
		if ip := normalizeIP(r.Header.Get(h)); ip != "" {
			return ip
		}
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for part := range strings.SplitSeq(fwd, ",") {
			if ip := normalizeIP(part); ip != "" {
				return ip
			}
		}
	}
	if ip := normalizeIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return normalizeIP(r.RemoteAddr)
	}
	return normalizeIP(host)
}

func normalizeIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}

// Referral returns the affiliate token from the `via` or `ref` query
// parameter, or the rewardful_referral cookie.
func Referral(r *http.Request) string {
	q := r.URL.Query()
	for _, key := range []string{"via", "ref"} {
		if v := cleanReferral(q.Get(key)); v != "" {
			return v
		}
	}
	if c, err := r.Cookie("rewardful_referral"); err == nil {
		return cleanReferral(c.Value)
	}
	return ""
}

func cleanReferral(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxReferralLength || !requestIDPattern.MatchString(s) {
		return ""
	}
	return s
}
