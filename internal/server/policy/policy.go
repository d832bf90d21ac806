// Package policy decides whether an actor may perform an action on a
// resource. It is a pure function of its inputs and never touches storage.
package policy

import (
	"github.com/sayedsafi2000/pixelsbee/internal/common"
	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
)

// Action names a guarded operation.
type Action string

const (
	Register          Action = "register"
	Login             Action = "login"
	CatalogRead       Action = "catalog.read"
	ProductCreate     Action = "product.create"
	ProductMutate     Action = "product.mutate"
	ProductListOwn    Action = "product.list_own"
	ImageUpload       Action = "image.upload"
	EntitlementManage Action = "entitlement.manage"
	OrderRecord       Action = "order.record"
	ProfileManage     Action = "profile.manage"
	UserStats         Action = "stats.user"
	VendorStats       Action = "stats.vendor"
	PlatformStats     Action = "stats.platform"
	AccountAdminister Action = "account.administer"
	CatalogAdminister Action = "catalog.administer"
)

// Actor is the authenticated caller. A nil *Actor is anonymous.
type Actor struct {
	ID   string
	Role models.Role
}

// Resource carries the attributes an action is evaluated against.
// VendorID is the owner of a product for ownership checks.
type Resource struct {
	VendorID string
}

var anonymous = map[Action]bool{
	Register:    true,
	Login:       true,
	CatalogRead: true,
}

// vendor-owned actions an admin does not get.
var vendorOnly = map[Action]bool{
	ProductCreate:  true,
	ProductListOwn: true,
	ImageUpload:    true,
	VendorStats:    true,
}

var vendorActions = map[Action]bool{
	ProductCreate:  true,
	ProductMutate:  true,
	ProductListOwn: true,
	ImageUpload:    true,
	VendorStats:    true,
	CatalogRead:    true,
	ProfileManage:  true,
}

var userActions = map[Action]bool{
	CatalogRead:       true,
	EntitlementManage: true,
	OrderRecord:       true,
	UserStats:         true,
	ProfileManage:     true,
}

// Allow returns nil when actor may perform action on res, ErrorUnauthorized
// for an anonymous caller on a protected action, and ErrorForbidden
// otherwise.
func Allow(actor *Actor, action Action, res Resource) error {
	if actor == nil {
		if anonymous[action] {
			return nil
		}
		return common.NewError(common.ErrorUnauthorized, "Authentication required")
	}

	switch actor.Role {
	case models.RoleAdmin:
		if !vendorOnly[action] {
			return nil
		}
	case models.RoleVendor:
		if vendorActions[action] {
			if action == ProductMutate && !Owns(actor, res) {
				break
			}
			return nil
		}
	case models.RoleUser:
		if userActions[action] {
			return nil
		}
	}
	return common.NewError(common.ErrorForbidden, "Forbidden")
}

// Owns reports whether actor owns res or is an admin.
func Owns(actor *Actor, res Resource) bool {
	if actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin || (res.VendorID != "" && res.VendorID == actor.ID)
}
