package authz

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const principalKey = "principal"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID  primitive.ObjectID
	Email   string
	IsAdmin bool
}

func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.UserID.Hex())
}

func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
