package auth

import (
	"net/http"

	"construction-backoffice/internal/config"

	"github.com/gin-gonic/gin"
)

// Module names gated by the permission predicate.
const (
	ModuleUnitInventory = "unit_inventory"
)

const capabilityKey = "capability"

// Capability is the resolved permission set for one user on one module. It is
// passed explicitly to whatever needs gating; nothing below the HTTP layer
// re-derives it from ambient user context.
type Capability struct {
	CanView       bool `json:"can_view"`
	CanEnter      bool `json:"can_enter"`
	CanEditDelete bool `json:"can_edit_delete"`
}

// Resolver answers the permission predicate for a role and module.
type Resolver interface {
	Capability(role, module string) Capability
}

// ConfigResolver resolves capabilities from the static role table in the
// configuration file. Unknown roles and modules resolve to no access.
type ConfigResolver struct {
	cfg config.AuthConfig
}

// NewConfigResolver creates a resolver over the configured role table.
func NewConfigResolver(cfg config.AuthConfig) *ConfigResolver {
	return &ConfigResolver{cfg: cfg}
}

// Capability implements Resolver.
func (r *ConfigResolver) Capability(role, module string) Capability {
	modules, ok := r.cfg.Roles[role]
	if !ok {
		return Capability{}
	}
	perm, ok := modules[module]
	if !ok {
		return Capability{}
	}
	return Capability{
		CanView:       perm.CanView,
		CanEnter:      perm.CanEnter,
		CanEditDelete: perm.CanEditDelete,
	}
}

// Middleware resolves the caller's capability for a module once per request
// and stores it in the context. The role comes from the X-User-Role header,
// falling back to the configured default.
func Middleware(resolver Resolver, defaultRole, module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = defaultRole
		}
		c.Set(capabilityKey, resolver.Capability(role, module))
		c.Next()
	}
}

// FromContext returns the capability resolved by Middleware.
func FromContext(c *gin.Context) Capability {
	if v, ok := c.Get(capabilityKey); ok {
		if cap, ok := v.(Capability); ok {
			return cap
		}
	}
	return Capability{}
}

// RequireView hides the module entirely from callers without view access.
func RequireView() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c).CanView {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Next()
	}
}

// RequireEnter gates data-entry routes (setup and generation).
func RequireEnter() gin.HandlerFunc {
	return func(c *gin.Context) {
		cap := FromContext(c)
		if !cap.CanView {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if !cap.CanEnter {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "entry not permitted"})
			return
		}
		c.Next()
	}
}

// RequireEditDelete gates ledger mutations and deletions.
func RequireEditDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		cap := FromContext(c)
		if !cap.CanView {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if !cap.CanEditDelete {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "edit not permitted"})
			return
		}
		c.Next()
	}
}
