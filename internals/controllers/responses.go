package controllers

import (
	"errors"
	"net/http"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/services"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByError = []struct {
	err    error
	status int
}{
	{services.ErrInvalidIdentifier, http.StatusBadRequest},
	{services.ErrInvalidPurpose, http.StatusBadRequest},
	{services.ErrNoActiveCode, http.StatusBadRequest},
	{services.ErrCodeExpired, http.StatusBadRequest},
	{services.ErrIncorrectCode, http.StatusBadRequest},
	{services.ErrInvalidTicket, http.StatusBadRequest},
	{services.ErrWeakPassword, http.StatusBadRequest},
	{services.ErrInvalidRole, http.StatusBadRequest},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrAccountBanned, http.StatusForbidden},
	{services.ErrPasswordRequired, http.StatusForbidden},
	{services.ErrNotRegistered, http.StatusNotFound},
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrAlreadyRegistered, http.StatusConflict},
	{services.ErrResendTooSoon, http.StatusTooManyRequests},
	{services.ErrDeliveryFailed, http.StatusBadGateway},
	{services.ErrStorageUnavailable, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, s := range statusByError {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// respondError maps a service error to its status and reason code. Driver
// details only reach the log.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":  services.Message(err),
		"reason": services.Reason(err),
	})
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "reason": "invalid_request"})
}

// requireCaptcha answers a failed check itself and hands back a fresh challenge.
func requireCaptcha(c *gin.Context, captcha *utils.CaptchaManager, token, code string) bool {
	if captcha.Verify(token, code) {
		return true
	}
	body := gin.H{"error": "Invalid captcha, please try again", "reason": "captcha_invalid"}
	if fresh, err := captcha.Issue(); err == nil {
		body["captcha"] = fresh
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
	return false
}
