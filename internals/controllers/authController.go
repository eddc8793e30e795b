package controllers

import (
	"net/http"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/middleware"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/services"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	Auth         *services.AuthService
	Captcha      *utils.CaptchaManager
	TokenManager *utils.TokenManager
	Logger       *zap.Logger
}

func NewAuthController(auth *services.AuthService, captcha *utils.CaptchaManager, tokenManager *utils.TokenManager, logger *zap.Logger) *AuthController {
	return &AuthController{
		Auth:         auth,
		Captcha:      captcha,
		TokenManager: tokenManager,
		Logger:       logger,
	}
}

type LoginReqBody struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	CaptchaToken string `json:"captcha_token"`
	CaptchaCode  string `json:"captcha_code"`
	OTP          string `json:"otp"`
}

// Login checks the captcha and password. Admin accounts get
// {"otp_required": true} first and must repeat the call with the emailed code.
func (a *AuthController) Login(c *gin.Context) {
	var body LoginReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	if !requireCaptcha(c, a.Captcha, body.CaptchaToken, body.CaptchaCode) {
		return
	}

	result, err := a.Auth.Login(c.Request.Context(), body.Email, body.Password, body.OTP)
	if err != nil {
		respondError(c, a.Logger, err)
		return
	}
	if result.OTPRequired {
		c.JSON(http.StatusOK, gin.H{
			"otp_required": true,
			"message":      "A sign-in code has been sent to your email",
		})
		return
	}

	a.TokenManager.SetSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully", "user": result.User})
}

type CompleteSignupBody struct {
	Ticket   string `json:"ticket" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) CompleteSignup(c *gin.Context) {
	var body CompleteSignupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	result, err := a.Auth.CompleteSignup(c.Request.Context(), body.Ticket, body.Name, body.Password)
	if err != nil {
		respondError(c, a.Logger, err)
		return
	}
	a.TokenManager.SetSessionCookie(c, result.Token)
	c.JSON(http.StatusCreated, gin.H{"message": "Account created", "user": result.User})
}

type ResetPasswordBody struct {
	Ticket   string `json:"ticket" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) ResetPassword(c *gin.Context) {
	var body ResetPasswordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	if err := a.Auth.ResetPassword(c.Request.Context(), body.Ticket, body.Password); err != nil {
		respondError(c, a.Logger, err)
		return
	}
	a.TokenManager.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated, please log in"})
}

// Logout only clears the cookie; session tokens are stateless.
func (a *AuthController) Logout(c *gin.Context) {
	a.TokenManager.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (a *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.IdentityFrom(c)})
}
