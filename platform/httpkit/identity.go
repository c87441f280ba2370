package httpkit

import (
	"github.com/gin-gonic/gin"
)

// Identity is the caller established by AuthRequired. Roles echo the token's
// roles claim for logging; lead visibility is decided from the users table.
type Identity struct {
	UserID   int64
	VendorID int64
	Roles    []string
}

// GetIdentity reads the caller set by AuthRequired. ok is false on routes
// outside the authenticated group.
func GetIdentity(c *gin.Context) (Identity, bool) {
	userID, userOK := c.Get(ContextUserIDKey)
	vendorID, vendorOK := c.Get(ContextVendorIDKey)
	if !userOK || !vendorOK {
		return Identity{}, false
	}

	uid, uok := userID.(int64)
	vid, vok := vendorID.(int64)
	if !uok || !vok {
		return Identity{}, false
	}

	rolesValue, _ := c.Get(ContextRolesKey)
	roles, _ := rolesValue.([]string)
	return Identity{UserID: uid, VendorID: vid, Roles: roles}, true
}
