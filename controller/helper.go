package controller

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common"
	"github.com/agentsim/simcheck/middleware"
	"github.com/agentsim/simcheck/model"
)

const maxBodyBytes = 1 << 20

// decodeJSON decodes the request body into v, aborting with 422 when it is not valid JSON.
func decodeJSON(c *gin.Context, v any) bool {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "read body"))
		return false
	}
	if err = json.Unmarshal(body, v); err != nil {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, errors.Wrap(err, "invalid JSON body"))
		return false
	}
	return true
}

// bindJSON decodes the request body into the struct pointed to by v and validates it.
func bindJSON(c *gin.Context, v any) bool {
	if !decodeJSON(c, v) {
		return false
	}
	if err := common.Validate.Struct(v); err != nil {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, errors.Wrap(err, "invalid payload"))
		return false
	}
	return true
}

// abortWithStoreError maps model errors onto status codes.
func abortWithStoreError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, errors.Errorf("%s not found", what))
	case errors.Is(err, model.ErrDuplicate):
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Errorf("%s already exists", what))
	default:
		middleware.AbortWithError(c, http.StatusInternalServerError, errors.Wrapf(err, "%s", what))
	}
}
