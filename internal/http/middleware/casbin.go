package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/config"
	"github.com/festoofficial/festo/internal/infrastructure/auth"
)

// CasbinMiddleware defines the interface for Casbin authorization middleware
type CasbinMiddleware interface {
	Enforce() gin.HandlerFunc
}

// CasbinMW authorizes a request by the caller's role and, failing that, as
// role_owner when an ownership rule ties the route to the caller's own id.
type CasbinMW struct {
	policies domain.PolicyService
	rules    []config.OwnershipRule
	log      *zap.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService, rules []config.OwnershipRule, log *zap.Logger) *CasbinMW {
	if log == nil {
		log = zap.NewNop()
	}
	return &CasbinMW{policies: policies, rules: rules, log: log}
}

// Enforce returns the casbin authorization middleware
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenUserID, userExists := c.Get(KeyUserID)
		primaryRole, roleExists := c.Get(KeyUserRole)
		if !userExists || !roleExists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User ID or role not found in token"})
			return
		}

		headerUserID := c.GetHeader("x-user-id")
		if headerUserID != "" && headerUserID != tokenUserID.(string) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Header x-user-id does not match token user ID"})
			return
		}

		// policies are written against route patterns, e.g. /api/events/:id
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		method := c.Request.Method

		allowed, err := mw.policies.CheckPermission(auth.RoleSubject(primaryRole.(string)), route, method)
		if err != nil {
			mw.log.Error("authorization check failed", zap.String("route", route), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Authorization check failed"})
			return
		}

		if !allowed && mw.isOwner(c, tokenUserID.(string), route, method) {
			allowed, err = mw.policies.CheckPermission(auth.SubjectOwner, route, method)
			if err != nil {
				mw.log.Error("owner authorization check failed", zap.String("route", route), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Authorization check failed"})
				return
			}
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		c.Next()
	}
}

func (mw *CasbinMW) isOwner(c *gin.Context, tokenUserID, route, method string) bool {
	for _, rule := range mw.rules {
		if rule.Path != route || rule.Method != method {
			continue
		}
		requestUserID := extractUserID(c, rule.Source, rule.ParamName)
		if requestUserID != "" && requestUserID == tokenUserID {
			return true
		}
	}
	return false
}
