// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated user's identity.
// This abstracts identity extraction from the web framework, allowing
// services to receive actor information without depending on Gin.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// IsClient reports whether the actor holds the customer-facing role.
func (i Identity) IsClient() bool {
	return i.Role == "CLIENTE"
}

// IsAuthenticated returns true if the user is authenticated.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != uuid.Nil
}

// GetIdentity extracts the Identity from a Gin context.
// Returns a zero identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	var ident Identity

	if raw, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := raw.(uuid.UUID); ok {
			ident.UserID = id
		}
	}
	if raw, ok := c.Get(ContextRoleKey); ok {
		if role, ok := raw.(string); ok {
			ident.Role = role
		}
	}

	return ident
}
