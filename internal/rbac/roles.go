package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOwner           = "owner"
	RoleFinance         = "finance"
	RoleAnalyst         = "analyst"
	RoleSuperAdmin      = "super_admin"
	RoleBillingOperator = "billing_operator" // hidden role for internal billing ops
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleBillingOperator }
