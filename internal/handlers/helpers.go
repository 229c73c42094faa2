// internal/handlers/helpers.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/cueshop/billiard-backend/internal/i18n"
	"github.com/cueshop/billiard-backend/internal/utils"
)

// bindJSON decodes and validates the request body. An empty body decodes to
// the zero value. On failure the 400 response is already written.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func pathID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		utils.HandleError(c, utils.NewValidationError(i18n.KeyInvalidID, nil))
	}
	return id, ok
}

func queryID(c *gin.Context, key string) (*uint, bool) {
	id, ok := utils.QueryUint(c, key)
	if !ok {
		utils.HandleError(c, utils.NewValidationError(i18n.KeyInvalidID, nil))
	}
	return id, ok
}

func isAdmin(c *gin.Context) bool {
	role, _ := utils.GetUserRoleFromContext(c)
	return role == "ADMIN"
}
