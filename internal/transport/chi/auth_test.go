package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/docfinder/internal/domain"
)

// tenantEcho writes the resolved tenant as the response body.
func tenantEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(domain.TenantFromContext(r.Context())))
	})
}

func serveAuth(t *testing.T, tenants map[string]string, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	TenantAuthMiddleware(tenants)(tenantEcho()).ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_Disabled_DefaultTenant(t *testing.T) {
	rr := serveAuth(t, nil, "/api/v1/search", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if rr.Body.String() != domain.DefaultTenant {
		t.Errorf("tenant = %q, want %q", rr.Body.String(), domain.DefaultTenant)
	}
}

func TestAuthMiddleware_Disabled_HeaderTenant(t *testing.T) {
	rr := serveAuth(t, map[string]string{"": "ignored"}, "/api/v1/search", map[string]string{TenantHeader: " acme "})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if rr.Body.String() != "acme" {
		t.Errorf("tenant = %q, want acme", rr.Body.String())
	}
}

func TestAuthMiddleware_ValidKey_ResolvesTenant(t *testing.T) {
	rr := serveAuth(t, map[string]string{"k1": "acme", "k2": "globex"}, "/api/v1/search",
		map[string]string{"Authorization": "Bearer k2", TenantHeader: "acme"})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if rr.Body.String() != "globex" {
		t.Errorf("tenant = %q, want globex (header must not override the key)", rr.Body.String())
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tenants := map[string]string{"secret": "acme"}
	tests := []struct {
		name   string
		header map[string]string
	}{
		{"missing header", nil},
		{"basic scheme", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}},
		{"wrong key", map[string]string{"Authorization": "Bearer wrong-key"}},
		{"empty bearer", map[string]string{"Authorization": "Bearer "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveAuth(t, tenants, "/api/v1/usage", tt.header)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("got %d, want 401", rr.Code)
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != CodeUnauthorized || errResp.Success {
				t.Errorf("unexpected error response: %+v", errResp)
			}
		})
	}
}

func TestAuthMiddleware_ExemptPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		rr := serveAuth(t, map[string]string{"secret": "acme"}, path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", path, rr.Code)
		}
	}
}

func TestAuthMiddleware_Disabled_RejectsReservedTenantHeader(t *testing.T) {
	for _, h := range []string{"acme:manual:evil", "acme*", "ac[me]"} {
		rr := serveAuth(t, nil, "/api/v1/search", map[string]string{TenantHeader: h})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%q: got %d, want 400", h, rr.Code)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != CodeInvalidTenant {
			t.Errorf("%q: code = %q", h, body.Code)
		}
	}
}
