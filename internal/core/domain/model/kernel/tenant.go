package kernel

import (
	"strings"

	"logistics/internal/pkg/errs"
)

// TenantID scopes every shipment, driver position and simulation.
// Tenants never observe each other's data.
type TenantID string

// reservedTenantChars are the key separator and the glob metacharacters
// understood by SCAN MATCH.
const reservedTenantChars = `:*?[]\`

// NewTenantID trims s and rejects empty identifiers and identifiers
// containing a key separator or glob metacharacter.
func NewTenantID(s string) (TenantID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errs.NewValueIsRequiredError("tenantID")
	}
	if strings.ContainsAny(s, reservedTenantChars) {
		return "", errs.NewValueIsInvalidError("tenantID")
	}
	return TenantID(s), nil
}

func (t TenantID) String() string {
	return string(t)
}

func (t TenantID) Validate() error {
	_, err := NewTenantID(string(t))
	return err
}
