// Package version tags requests served by the legacy versioned routes.
package version

import (
	"log/slog"
	"net/http"

	"airdrop/pkg/requestcontext"
)

// Legacy is the version prefix older clients still call (/1.0/, /1.0/get).
const Legacy = "1.0"

// Deprecated marks a route as belonging to an older API version. The version
// is stored in the context and a Deprecation header points clients at the
// unversioned successor.
//
//	r.With(version.Deprecated(version.Legacy, "/get", logger)).Get("/1.0/get", h.handleLookup)
func Deprecated(apiVersion, successor string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithAPIVersion(r.Context(), apiVersion)
			w.Header().Set("Deprecation", "true")
			w.Header().Set("Link", "<"+successor+`>; rel="successor-version"`)
			if logger != nil {
				logger.DebugContext(ctx, "deprecated route called",
					"request_id", requestcontext.RequestID(ctx),
					"api_version", apiVersion,
					"path", r.URL.Path,
				)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
