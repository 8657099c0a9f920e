package http

import (
	"github.com/gin-gonic/gin"

	"github.com/edushare/auth/service"
)

// SetupRouter wires the gin router: the rate-limit gate in front of the
// auth flows and the bearer middleware in front of the protected API.
func SetupRouter(
	auth *service.AuthService,
	sessions *service.SessionService,
	limiter *service.RateLimiter,
	limits map[string]int,
) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(auth)
	gate := RateLimitGate(limiter, limits, DefaultRateLimitTable())

	authGroup := router.Group("/auth", gate)
	{
		authGroup.POST("/signup", handlers.Signup)
		authGroup.POST("/signin", handlers.Signin)
		authGroup.GET("/otp/send", handlers.SendOtp)
		authGroup.POST("/otp/verify", handlers.VerifyOtp)
		authGroup.POST("/refresh", handlers.Refresh)
		authGroup.POST("/logout", handlers.Logout)
		authGroup.POST("/forgot-password", handlers.ForgotPassword)
	}

	api := router.Group("/api", BearerAuth(sessions))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
