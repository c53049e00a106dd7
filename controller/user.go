package controller

import (
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/middleware"
	"github.com/agentsim/simcheck/model"
)

const tokenType = "bearer"

func Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := model.GetUserByEmail(gmw.Ctx(c), req.Email)
	if err != nil || !user.ValidatePassword(req.Password) {
		middleware.AbortWithError(c, http.StatusUnauthorized, errors.New("Invalid email or password"))
		return
	}
	setupLogin(c, user, config.RefServerTokenTTL)
}

// TestLogin creates a throwaway guest account on every call.
func TestLogin(c *gin.Context) {
	ctx := gmw.Ctx(c)
	suffix := random.Suffix(10)
	user, err := model.CreateUser(ctx, "guest-"+suffix+"@example.com", random.GetRandomString(24), "Guest "+suffix[:4], true)
	if err != nil {
		abortWithStoreError(c, err, "guest user")
		return
	}
	gmw.GetLogger(c).Info("guest login", zap.String("user_id", user.ID))
	setupLogin(c, user, config.RefServerGuestTokenTTL)
}

func Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := model.CreateUser(gmw.Ctx(c), req.Email, req.Password, req.Name, false)
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			middleware.AbortWithError(c, http.StatusBadRequest, errors.New("Email already registered"))
			return
		}
		abortWithStoreError(c, err, "user")
		return
	}
	setupLogin(c, user, config.RefServerTokenTTL)
}

func setupLogin(c *gin.Context, user *model.User, ttl time.Duration) {
	token, err := middleware.IssueToken(user, ttl)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken: token,
		TokenType:   tokenType,
		User:        user.ToDTO(),
	})
}

// GetSelf returns the caller's user object without any envelope.
func GetSelf(c *gin.Context) {
	user, err := model.GetUserByID(gmw.Ctx(c), middleware.UserID(c))
	if err != nil {
		abortWithStoreError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user.ToDTO())
}

func UpdateSelf(c *gin.Context) {
	var req dto.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}

	id := middleware.UserID(c)
	user, err := model.UpdateUserName(gmw.Ctx(c), id, req.Name)
	if err != nil {
		abortWithStoreError(c, err, "user")
		return
	}
	middleware.ForgetUser(id)
	c.JSON(http.StatusOK, user.ToDTO())
}
