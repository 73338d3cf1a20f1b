package middleware

import (
	"strings"

	"github.com/amoylab/shopinspector/internal/auth/jwt"
	"github.com/amoylab/shopinspector/internal/common/cnst"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"github.com/gin-gonic/gin"
)

// ContextKeyClaims holds the validated token claims
const ContextKeyClaims = "claims"

// JWTAuthMiddleware validates the bearer token and records the acting user on the context
func JWTAuthMiddleware(jwtService *jwt.Service, errs *errorx.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			errs.HandleError(c, errorx.ErrUnauthorized)
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			errs.HandleError(c, errorx.ErrUnauthorized.WithMessage("Invalid or expired token"))
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(cnst.ContextKeyActor, claims.Username)
		c.Next()
	}
}

// Actor returns the authenticated user name, or fallback for anonymous requests
func Actor(c *gin.Context, fallback string) string {
	return cnst.ActorOr(c.GetString(cnst.ContextKeyActor), fallback)
}
