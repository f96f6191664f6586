package shared

// Permission names guarding back-office routes. One set per resource,
// mirroring the route table.
const (
	PermCategoriesIndex  = "categories.index"
	PermCategoriesCreate = "categories.create"
	PermCategoriesEdit   = "categories.edit"
	PermCategoriesDelete = "categories.delete"

	PermProductsIndex  = "products.index"
	PermProductsCreate = "products.create"
	PermProductsEdit   = "products.edit"
	PermProductsDelete = "products.delete"

	PermCustomersIndex  = "customers.index"
	PermCustomersCreate = "customers.create"
	PermCustomersEdit   = "customers.edit"
	PermCustomersDelete = "customers.delete"

	PermUsersIndex  = "users.index"
	PermUsersCreate = "users.create"
	PermUsersEdit   = "users.edit"
	PermUsersDelete = "users.delete"

	PermRolesIndex  = "roles.index"
	PermRolesCreate = "roles.create"
	PermRolesEdit   = "roles.edit"
	PermRolesDelete = "roles.delete"

	PermPermissionsIndex = "permissions.index"

	PermSalesIndex   = "sales.index"
	PermProfitsIndex = "profits.index"
)

// AllPermissions lists every known permission, used by seeds and the
// permissions page.
func AllPermissions() []string {
	return []string{
		PermCategoriesIndex, PermCategoriesCreate, PermCategoriesEdit, PermCategoriesDelete,
		PermProductsIndex, PermProductsCreate, PermProductsEdit, PermProductsDelete,
		PermCustomersIndex, PermCustomersCreate, PermCustomersEdit, PermCustomersDelete,
		PermUsersIndex, PermUsersCreate, PermUsersEdit, PermUsersDelete,
		PermRolesIndex, PermRolesCreate, PermRolesEdit, PermRolesDelete,
		PermPermissionsIndex,
		PermSalesIndex, PermProfitsIndex,
	}
}
