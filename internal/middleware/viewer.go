package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/services"
)

// ViewerResolver turns an authenticated user ID into a Viewer.
type ViewerResolver interface {
	ResolveViewer(userID uint64) (authz.Viewer, error)
}

// ResolveViewer loads the caller's role and organization. It must run after
// RequireAuth.
func ResolveViewer(resolver ViewerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		viewer, err := resolver.ResolveViewer(userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				// Session outlived its user.
				apierrors.Unauthorized(c, "")
			case errors.Is(err, services.ErrNoRole):
				apierrors.Forbidden(c, "Your account has no organizer or agent role")
			default:
				apierrors.InternalError(c, "Failed to resolve user")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyViewer, viewer)
		c.Next()
	}
}

// RequireOrganizer rejects callers that are not organizers before any data is touched.
func RequireOrganizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, exists := GetViewer(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !viewer.IsOrganizer() {
			apierrors.Forbidden(c, "Only organizers can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetViewer retrieves the resolved viewer from context
func GetViewer(c *gin.Context) (authz.Viewer, bool) {
	value, exists := c.Get(constants.ContextKeyViewer)
	if !exists {
		return authz.Viewer{}, false
	}
	viewer, ok := value.(authz.Viewer)
	return viewer, ok
}
