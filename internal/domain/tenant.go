package domain

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// MaxTenantLength bounds a tenant name in bytes.
const MaxTenantLength = 128

// tenantReserved are the key separator and the SCAN MATCH metacharacters. A
// tenant holding any of them could address or glob another tenant's keys.
const tenantReserved = `:*?[]\`

type tenantKey struct{}

// ContextWithTenant stores the resolved tenant (company name) in the context.
func ContextWithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// TenantFromContext returns the tenant set by the auth middleware, or DefaultTenant.
func TenantFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tenantKey{}).(string); ok && t != "" {
		return t
	}
	return DefaultTenant
}

// ValidateTenant rejects names that are empty, too long, or contain control
// characters or reserved key characters.
func ValidateTenant(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidTenant)
	case len(name) > MaxTenantLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidTenant, MaxTenantLength)
	case strings.ContainsAny(name, tenantReserved):
		return fmt.Errorf("%w: %q contains one of %s", ErrInvalidTenant, name, tenantReserved)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidTenant, name)
	}
	return nil
}
