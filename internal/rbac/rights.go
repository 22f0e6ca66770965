package rbac

// Static role/permission model, loaded once and never mutated at runtime.

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	RightGetAllProducts = "getAllProducts"
	RightGetProduct     = "getProduct"
	RightCreateProduct  = "createProduct"
	RightUpdateProduct  = "updateProduct"
	RightDeleteProduct  = "deleteProduct"
)

var roleRights = map[string][]string{
	RoleUser: {
		RightGetAllProducts,
		RightGetProduct,
	},
	RoleAdmin: {
		RightCreateProduct,
		RightGetAllProducts,
		RightGetProduct,
		RightUpdateProduct,
		RightDeleteProduct,
	},
}

func IsValidRole(role string) bool {
	_, ok := roleRights[role]
	return ok
}

// RightsForRole returns a copy so callers cannot mutate the table.
func RightsForRole(role string) []string {
	rights, ok := roleRights[role]
	if !ok {
		return nil
	}

	out := make([]string, len(rights))
	copy(out, rights)
	return out
}

// HasAnyRight reports whether the role holds at least one of the required
// rights. An empty requirement always passes.
func HasAnyRight(role string, required ...string) bool {
	if len(required) == 0 {
		return true
	}

	rights, ok := roleRights[role]
	if !ok {
		return false
	}

	for _, right := range rights {
		for _, want := range required {
			if right == want {
				return true
			}
		}
	}
	return false
}
