package chi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/domain"
	logpkg "github.com/kailas-cloud/docfinder/internal/logger"
)

// TenantHeader names the company when authentication is disabled.
const TenantHeader = "X-Company-Name"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// TenantAuthMiddleware resolves the tenant of every request and stores it in the context.
// tenants maps api keys to company names. If it is empty, authentication is disabled and
// the tenant comes from the X-Company-Name header, falling back to domain.DefaultTenant.
func TenantAuthMiddleware(tenants map[string]string) func(http.Handler) http.Handler {
	validKeys := make(map[string]string, len(tenants))
	for k, t := range tenants {
		if k != "" && t != "" {
			validKeys[k] = t
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			tenant := domain.DefaultTenant
			if len(validKeys) == 0 {
				if h := strings.TrimSpace(r.Header.Get(TenantHeader)); h != "" {
					if err := domain.ValidateTenant(h); err != nil {
						writeError(w, http.StatusBadRequest, CodeInvalidTenant, "invalid "+TenantHeader+" header")
						return
					}
					tenant = h
				}
			} else {
				auth := r.Header.Get("Authorization")
				if auth == "" {
					writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing authorization header")
					return
				}

				const bearerPrefix = "Bearer "
				if !strings.HasPrefix(auth, bearerPrefix) {
					writeError(w, http.StatusUnauthorized, CodeUnauthorized,
						"authorization header must use Bearer scheme")
					return
				}

				t, ok := validKeys[auth[len(bearerPrefix):]]
				if !ok {
					writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
					return
				}
				tenant = t
			}

			ctx := domain.ContextWithTenant(r.Context(), tenant)
			ctx = logpkg.With(ctx, zap.String("tenant", tenant))
			logpkg.AddRequestFields(ctx, zap.String("tenant", tenant))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
