package routes

import (
	"net/http"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/config"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/controllers"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRouter(
	cfg config.Config,
	logger *zap.Logger,
	guard *middleware.Guard,
	authCtrl *controllers.AuthController,
	verifyCtrl *controllers.VerificationController,
	captchaCtrl *controllers.CaptchaController,
	adminCtrl *controllers.AdminController,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	public := r.Group("/")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":      "active",
				"environment": cfg.AppEnv,
				"message":     cfg.AppName + " auth API is running",
			})
		})
		public.GET("/captcha", captchaCtrl.Issue)

		signup := public.Group("signup")
		{
			signup.POST("/complete", authCtrl.CompleteSignup)
			otp := signup.Group("/otp")
			{
				otp.POST("/request", verifyCtrl.RequestSignupOTP)
				otp.POST("/verify", verifyCtrl.VerifySignup)
			}
		}

		login := public.Group("login")
		{
			login.POST("", authCtrl.Login)
			otp := login.Group("/otp")
			{
				otp.POST("/request", verifyCtrl.RequestLoginOTP)
				otp.POST("/verify", verifyCtrl.VerifyLogin)
			}
		}

		password := public.Group("password")
		{
			password.POST("/forgot", verifyCtrl.ForgotPassword)
			password.POST("/verify", verifyCtrl.VerifyPasswordReset)
			password.POST("/reset", authCtrl.ResetPassword)
		}

		public.POST("/logout", authCtrl.Logout)
	}

	protected := r.Group("/")
	protected.Use(guard.RequireAuth)
	{
		protected.GET("/me", authCtrl.Me)
	}

	admin := r.Group("/admin")
	admin.Use(guard.RequireAdminRole)
	{
		admin.GET("/users", adminCtrl.ListUsers)
		admin.PATCH("/users/:id", adminCtrl.UpdateUser)
	}
	return r
}
