package identity

import "strings"

// Role is the coarse access level of an admin account
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// Permission codes checked by the HTTP layer
const (
	PermUserRead     = "user:read"
	PermUserWrite    = "user:write"
	PermLeadRead     = "lead:read"
	PermLeadWrite    = "lead:write"
	PermInvoiceRead  = "invoice:read"
	PermInvoiceWrite = "invoice:write"
	PermContentRead  = "content:read"
	PermContentWrite = "content:write"
	PermBlogRead     = "blog:read"
	PermBlogWrite    = "blog:write"
	PermAuditRead    = "audit:read"
	PermAuditWrite   = "audit:write"
)

// AllPermissions lists every permission code
var AllPermissions = []string{
	PermUserRead, PermUserWrite,
	PermLeadRead, PermLeadWrite,
	PermInvoiceRead, PermInvoiceWrite,
	PermContentRead, PermContentWrite,
	PermBlogRead, PermBlogWrite,
	PermAuditRead, PermAuditWrite,
}

var editorPermissions = []string{
	PermContentRead, PermContentWrite,
	PermBlogRead, PermBlogWrite,
	PermLeadRead,
	PermAuditRead,
}

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// ParseRole normalizes a role name
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// Permissions returns the permission codes granted by the role
func (r Role) Permissions() []string {
	var src []string
	switch r {
	case RoleAdmin:
		src = AllPermissions
	case RoleEditor:
		src = editorPermissions
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
