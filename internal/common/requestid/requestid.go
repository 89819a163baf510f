package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const (
	// Header carries the request ID in both directions
	Header = "X-Request-ID"
	// MaxRequestIDLength matches the length of a UUID
	MaxRequestIDLength = 36
	// PrefixLength is the random prefix prepended to caller-supplied IDs
	PrefixLength = 5
	// MaxCustomIDLength leaves room for the prefix and its hyphen
	MaxCustomIDLength = MaxRequestIDLength - PrefixLength - 1

	userValueKey = "request_id"
)

var (
	invalidCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
	hyphenRunRegex    = regexp.MustCompile(`-+`)
)

// Sanitize keeps [a-zA-Z0-9-] from id, turning spaces into hyphens and
// collapsing hyphen runs. The result is at most MaxCustomIDLength long.
func Sanitize(id string) string {
	s := strings.ReplaceAll(id, " ", "-")
	s = invalidCharsRegex.ReplaceAllString(s, "")
	s = hyphenRunRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxCustomIDLength {
		s = strings.TrimRight(s[:MaxCustomIDLength], "-")
	}
	return s
}

// Generate returns "{prefix}-{sanitized customID}", or a UUID when customID
// has nothing usable.
func Generate(customID string) string {
	sanitized := Sanitize(customID)
	if sanitized == "" {
		return uuid.New().String()
	}
	return randomPrefix() + "-" + sanitized
}

func randomPrefix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()[:PrefixLength]
	}
	return hex.EncodeToString(b)[:PrefixLength]
}

// Middleware assigns a request ID from the incoming header (or a fresh one),
// stores it on the context and echoes it in the response.
func Middleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id := Generate(string(ctx.Request.Header.Peek(Header)))
		ctx.SetUserValue(userValueKey, id)
		ctx.Response.Header.Set(Header, id)
		next(ctx)
	}
}

// FromContext returns the ID assigned by Middleware, or "".
func FromContext(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(userValueKey).(string)
	return id
}
