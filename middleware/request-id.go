package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/ctxkey"
	"github.com/agentsim/simcheck/common/helper"
	"github.com/agentsim/simcheck/common/random"
)

func RequestId() func(c *gin.Context) {
	return func(c *gin.Context) {
		id := helper.GetTimeString() + random.GetRandomString(8)
		c.Set(ctxkey.RequestId, id)
		c.Header(ctxkey.RequestId, id)
		c.Next()
	}
}
