package controllers

import (
	"net/http"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/services"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerificationController serves the request/verify halves of every emailed-code flow.
type VerificationController struct {
	OTP          *services.OTPService
	Auth         *services.AuthService
	Captcha      *utils.CaptchaManager
	TokenManager *utils.TokenManager
	Logger       *zap.Logger
}

func NewVerificationController(otp *services.OTPService, auth *services.AuthService, captcha *utils.CaptchaManager, tokenManager *utils.TokenManager, logger *zap.Logger) *VerificationController {
	return &VerificationController{
		OTP:          otp,
		Auth:         auth,
		Captcha:      captcha,
		TokenManager: tokenManager,
		Logger:       logger,
	}
}

type RequestCodeBody struct {
	Email        string `json:"email" binding:"required,email"`
	CaptchaToken string `json:"captcha_token"`
	CaptchaCode  string `json:"captcha_code"`
}

type VerifyReqBody struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

func (v *VerificationController) requestCode(c *gin.Context, purpose models.OTPPurpose) {
	var body RequestCodeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	if !requireCaptcha(c, v.Captcha, body.CaptchaToken, body.CaptchaCode) {
		return
	}

	var err error
	if purpose == models.PurposeLoginOTP {
		err = v.Auth.RequestLoginCode(c.Request.Context(), body.Email)
	} else {
		err = v.OTP.RequestOTP(c.Request.Context(), body.Email, purpose)
	}
	if err != nil {
		respondError(c, v.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "A verification code has been sent to your email"})
}

// verifyForTicket consumes a code and returns a ticket for the follow-up step.
func (v *VerificationController) verifyForTicket(c *gin.Context, purpose models.OTPPurpose) {
	var body VerifyReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	verification, err := v.OTP.VerifyOTP(c.Request.Context(), body.Email, body.Code, purpose)
	if err != nil {
		respondError(c, v.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Email verified",
		"ticket":     verification.Ticket,
		"expires_at": verification.TicketExpiresAt.Unix(),
	})
}

func (v *VerificationController) RequestSignupOTP(c *gin.Context) {
	v.requestCode(c, models.PurposeSignupVerification)
}

func (v *VerificationController) VerifySignup(c *gin.Context) {
	v.verifyForTicket(c, models.PurposeSignupVerification)
}

func (v *VerificationController) RequestLoginOTP(c *gin.Context) {
	v.requestCode(c, models.PurposeLoginOTP)
}

// VerifyLogin completes passwordless login and sets the session cookie.
func (v *VerificationController) VerifyLogin(c *gin.Context) {
	var body VerifyReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	result, err := v.Auth.LoginWithOTP(c.Request.Context(), body.Email, body.Code)
	if err != nil {
		respondError(c, v.Logger, err)
		return
	}
	v.TokenManager.SetSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully", "user": result.User})
}

func (v *VerificationController) ForgotPassword(c *gin.Context) {
	v.requestCode(c, models.PurposePasswordReset)
}

func (v *VerificationController) VerifyPasswordReset(c *gin.Context) {
	v.verifyForTicket(c, models.PurposePasswordReset)
}
