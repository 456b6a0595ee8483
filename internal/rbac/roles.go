package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleEstimator  = "estimator"
	RoleTechnician = "technician"
	RoleSuperAdmin = "super_admin"
	RoleIntegrator = "integrator" // hidden role for provider integrations
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleIntegrator }
