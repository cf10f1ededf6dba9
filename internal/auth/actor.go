// Package auth resolves the caller of a request. Sessions are issued and
// verified by the gateway in front of this service, which forwards the
// authenticated identity in the X-Actor-Type and X-Actor-ID headers.
package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	HeaderActorType = "X-Actor-Type"
	HeaderActorID   = "X-Actor-ID"

	actorKey = "hireflow.actor"
)

type ActorType string

const (
	ActorCandidate ActorType = "candidate"
	ActorEmployer  ActorType = "employer"
	ActorAdmin     ActorType = "admin"
)

type Actor struct {
	Type ActorType
	ID   uint
}

// Middleware rejects requests without a usable identity.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := parse(c.GetHeader(HeaderActorType), c.GetHeader(HeaderActorID))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized or invalid token"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// Require lets only the given actor types through.
func Require(types ...ActorType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := FromContext(c)
		if ok {
			for _, t := range types {
				if actor.Type == t {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
	}
}

func FromContext(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

func parse(typ, id string) (Actor, bool) {
	switch t := ActorType(typ); t {
	case ActorCandidate, ActorEmployer, ActorAdmin:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil || n == 0 {
			return Actor{}, false
		}
		return Actor{Type: t, ID: uint(n)}, true
	}
	return Actor{}, false
}
