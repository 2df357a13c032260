package httpapi

import "github.com/gin-gonic/gin"

// SuccessResponse is the standard envelope for a successful response body.
type SuccessResponse struct {
	Data any `json:"data"`
}

func respondJSON(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{Data: data})
}

func respondError(c *gin.Context, err error) {
	apiErr := TranslateError(err)
	c.AbortWithStatusJSON(apiErr.HTTPStatus, apiErr)
}
