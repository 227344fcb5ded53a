package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lms/internal/pkg/apperrors"
)

// parseIDParam reads a positive int64 path parameter
func parseIDParam(ctx *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(map[string]string{name: "must be a valid number"})
	}
	if id <= 0 {
		return 0, apperrors.NewValidationError(map[string]string{name: "must be greater than 0"})
	}
	return id, nil
}
