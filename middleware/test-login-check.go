package middleware

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/network"
)

// TestLoginCheck limits guest login to clients inside REFSERVER_TEST_LOGIN_SUBNETS.
func TestLoginCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !network.IsIpInSubnets(c.ClientIP(), config.RefServerTestLoginSubnets) {
			AbortWithError(c, http.StatusForbidden,
				errors.Errorf("test login is not available from %s", c.ClientIP()))
			return
		}
		c.Next()
	}
}
