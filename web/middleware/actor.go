package middleware

import (
	"strconv"

	"campus-agent/auth"

	"github.com/gin-gonic/gin"
)

// Headers populated by the upstream session/auth layer. This service trusts
// them; it is not reachable except through that layer.
const (
	HeaderUserID       = "X-User-Id"
	HeaderUserRole     = "X-User-Role"
	HeaderUniversityID = "X-University-Id"
)

const actorKey = "actor"

// ActorMiddleware resolves the acting user from the auth headers. Requests
// without headers act as an anonymous student with no university binding.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := auth.Actor{Role: auth.ParseRole(c.GetHeader(HeaderUserRole))}
		if id, err := strconv.ParseInt(c.GetHeader(HeaderUserID), 10, 64); err == nil {
			actor.UserID = id
		}
		if id, err := strconv.ParseInt(c.GetHeader(HeaderUniversityID), 10, 64); err == nil {
			actor.UniversityID = id
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom extracts the acting user stored by ActorMiddleware.
func ActorFrom(c *gin.Context) auth.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(auth.Actor); ok {
			return actor
		}
	}
	return auth.Actor{}
}
