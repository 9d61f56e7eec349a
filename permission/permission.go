// Package permission evaluates document permissions for authenticated
// users. Grants are role-based: each role carries per-doctype flags and a
// user is allowed an operation when any of their roles grants it.
package permission

import "github.com/amrbasha900/mobile-endpoints/repository/models"

// Doctype names used across the endpoints.
const (
	DoctypeInvoiceForm = "Invoice Form"
	DoctypeSupplier    = "Supplier"
	DoctypeCustomer    = "Customer"
	DoctypeItem        = "Item"
)

// Ptype is a permission kind on a doctype.
type Ptype string

const (
	Read   Ptype = "read"
	Write  Ptype = "write"
	Create Ptype = "create"
	Submit Ptype = "submit"
	Delete Ptype = "delete"
)

// HasPermission reports whether the user may perform ptype on doctype.
// The user's roles and role permissions must already be loaded.
func HasPermission(user *models.User, doctype string, ptype Ptype) bool {
	if user == nil || !user.Enabled {
		return false
	}
	for _, role := range user.Roles {
		for _, grant := range role.Permissions {
			if grant.Doctype != doctype {
				continue
			}
			if granted(grant, ptype) {
				return true
			}
		}
	}
	return false
}

func granted(grant models.RolePermission, ptype Ptype) bool {
	switch ptype {
	case Read:
		// Any write-side grant implies read, matching how the upstream
		// role model behaves.
		return grant.CanRead || grant.CanWrite || grant.CanCreate || grant.CanSubmit || grant.CanDelete
	case Write:
		return grant.CanWrite
	case Create:
		return grant.CanCreate
	case Submit:
		return grant.CanSubmit
	case Delete:
		return grant.CanDelete
	default:
		return false
	}
}
