package rbac

const (
	RoleTaker = "taker"
	RoleAdmin = "admin"

	PermQuizTake       = "quiz:take"
	PermCatalogReload  = "catalog:reload"
	PermSubmissionView = "submission:view"
)

// Default policy. Takers sign in with an email; admins with a password.
var RolePermissions = map[string][]string{
	RoleTaker: {
		PermQuizTake,
	},
	RoleAdmin: {
		"*", // everything
	},
}
