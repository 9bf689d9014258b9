// Package device parses the caller's User-Agent once per request so the
// request log line can carry a readable client summary.
package device

import (
	"context"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// Info is the parsed form of a User-Agent header.
type Info struct {
	Browser        string
	BrowserVersion string
	OS             string
	Mobile         bool
	Bot            bool
}

// Summary renders Info as "Browser/Version (OS)", or "" for an empty agent.
func (i Info) Summary() string {
	if i.Browser == "" && i.OS == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(i.Browser)
	if i.BrowserVersion != "" {
		b.WriteString("/")
		b.WriteString(i.BrowserVersion)
	}
	if i.OS != "" {
		b.WriteString(" (")
		b.WriteString(i.OS)
		b.WriteString(")")
	}
	return strings.TrimSpace(b.String())
}

// Parse extracts browser, OS and form factor from a raw User-Agent.
func Parse(raw string) Info {
	if strings.TrimSpace(raw) == "" {
		return Info{}
	}
	ua := useragent.New(raw)
	name, ver := ua.Browser()
	return Info{
		Browser:        name,
		BrowserVersion: ver,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
}

type contextKeyDevice struct{}

// Get retrieves the parsed device from the context.
func Get(ctx context.Context) Info {
	if info, ok := ctx.Value(contextKeyDevice{}).(Info); ok {
		return info
	}
	return Info{}
}

// With injects a parsed device into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func With(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, contextKeyDevice{}, info)
}

// Middleware parses the User-Agent header into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := With(r.Context(), Parse(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
