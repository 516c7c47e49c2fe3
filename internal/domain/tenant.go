package domain

import (
	"regexp"
	"strings"
)

const tenantSchemaPrefix = "tenant_"

var tenantIdentPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{0,62}$`)

// TenantRef is threaded through every source call; there is no ambient
// "current tenant".
type TenantRef struct {
	// Identifier is the bare tenant name, e.g. "demo".
	Identifier string `json:"identifier"`
	// Schema is the Postgres schema holding the tenant's tables, e.g. "tenant_demo".
	Schema string `json:"schema"`
}

// NewTenantRef accepts either "demo" or "tenant_demo".
func NewTenantRef(raw string) (TenantRef, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = strings.TrimPrefix(id, tenantSchemaPrefix)
	if !tenantIdentPattern.MatchString(id) {
		return TenantRef{}, NewValidationError("tenant", "tenant must be lowercase letters, digits or underscores")
	}
	return TenantRef{Identifier: id, Schema: tenantSchemaPrefix + id}, nil
}

func (t TenantRef) IsZero() bool { return t.Identifier == "" }

func (t TenantRef) String() string { return t.Identifier }
