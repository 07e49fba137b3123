package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/atb/dashboard"
)

// CodeValidation marks a request body or query that could not be bound.
const CodeValidation = "VALIDATION_ERROR"

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func sendCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data, Message: message})
}

// sendError classifies err with dashboard.Code and picks the status from
// the code.
func sendError(c *gin.Context, err error) {
	code := dashboard.Code(err)
	msg := err.Error()
	if code == dashboard.CodeInternal {
		msg = "Internal server error"
	}
	sendCustomError(c, statusFor(code), code, msg)
}

func sendValidationError(c *gin.Context, err error) {
	sendCustomError(c, http.StatusBadRequest, CodeValidation, err.Error())
}

func sendCustomError(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

func statusFor(code string) int {
	switch code {
	case dashboard.CodeNotFound:
		return http.StatusNotFound
	case dashboard.CodeInsufficientFunds, dashboard.CodeInsufficientAllocation:
		return http.StatusConflict
	case dashboard.CodeInvalidAmount, dashboard.CodeInvalidArgument, CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
