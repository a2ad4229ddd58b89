package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	"github.com/hoikulink/tsumugi/internal/observability/obscontext"
)

// The fronting identity layer authenticates requests and forwards the acting
// user as headers; this service only decides what that actor may touch.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"

	RoleAdmin    = "admin"
	RoleGuardian = "guardian"

	contextActorKey = "actor"
)

// ActorFromHeaders resolves the acting user from the forwarded headers and
// stores it on the request context for handlers and logs.
func ActorFromHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := strings.TrimSpace(c.GetHeader(HeaderActorID))
		role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole)))

		if rawID == "" {
			c.Next()
			return
		}
		id, err := snowflake.ParseString(rawID)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := childdomain.Actor{
			UserID: id,
			Admin:  role == RoleAdmin,
		}
		c.Set(contextActorKey, actor)

		ctx := obscontext.WithActor(c.Request.Context(), id.String(), role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireActor rejects requests with no authenticated actor.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := actorFrom(c); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose actor is not an administrator.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !actor.Admin {
			AbortWithError(c, childdomain.ErrForbidden)
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) (childdomain.Actor, bool) {
	value, ok := c.Get(contextActorKey)
	if !ok {
		return childdomain.Actor{}, false
	}
	actor, ok := value.(childdomain.Actor)
	return actor, ok
}
