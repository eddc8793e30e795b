package controllers

import (
	"net/http"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CaptchaController struct {
	Captcha *utils.CaptchaManager
	Logger  *zap.Logger
}

func NewCaptchaController(captcha *utils.CaptchaManager, logger *zap.Logger) *CaptchaController {
	return &CaptchaController{Captcha: captcha, Logger: logger}
}

// Issue returns {svg, token, length, type}; the answer is never in the JSON.
func (cc *CaptchaController) Issue(c *gin.Context) {
	challenge, err := cc.Captcha.Issue()
	if err != nil {
		cc.Logger.Error("captcha issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create captcha"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, challenge)
}
