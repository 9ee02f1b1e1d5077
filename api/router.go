// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"linkly/link-api/db"
	"linkly/link-api/middleware"
	"linkly/link-api/pkg/security"
	"linkly/link-api/service"
	"linkly/link-api/store"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Argon    *security.ArgonHash
	Tokens   *security.TokenService
	Users    *store.Users
	Sessions *store.Sessions
	Links    *store.Links
	Mailer   service.Mailer
	Google   *security.GoogleOAuth
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	a.Argon = security.NewArgon()
	a.Tokens = security.NewTokenService(
		viper.GetString("jwt.secret"),
		time.Duration(viper.GetInt("jwt.access_ttl_minutes"))*time.Minute,
		time.Duration(viper.GetInt("jwt.refresh_ttl_days"))*24*time.Hour,
	)
	a.Users = store.NewUsers(db)
	a.Sessions = store.NewSessions(db)
	a.Links = store.NewLinks(db, viper.GetInt("links.slug_length"))
	a.Mailer = service.NewMailer()

	if viper.GetBool("oauth.google.enabled") {
		a.Google = security.NewGoogleOAuth(security.GoogleOAuthConfig{
			ClientID:     viper.GetString("oauth.google.client_id"),
			ClientSecret: viper.GetString("oauth.google.client_secret"),
			RedirectURL:  viper.GetString("oauth.google.redirect_url"),
		})
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true

	auth := middleware.NewAuthMiddleware(&middleware.AuthDeps{
		Tokens:   a.Tokens,
		Sessions: a.Sessions,
		Users:    a.Users,
	})
	authLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		Burst:             5,
	})

	// GET /:slug			-> Public redirect to the stored destination
	router.GET("/:slug", a.LinkRedirect)

	// GET /verify			-> Redeems an email verification token
	router.GET("/verify", a.UserVerify)

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Reports whether the request carries a live identity
		main.HEAD("/validate", auth, middleware.RequireAuth(), a.Validate)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/users		-> Returns the current user and their link count
		users.GET("", auth, middleware.RequireAuth(), a.UserFetch)

		// POST /api/users 		-> Registers a new user and logs them in
		users.POST("", authLimiter, a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and sets the token cookies
		users.POST("/login", authLimiter, a.UserLogin)

		// POST /api/users/logout 	-> Revokes the current session and clears cookies
		users.POST("/logout", auth, a.UserLogout)
	}

	if a.Google != nil {
		oauth := main.Group("/auth/google", authLimiter)
		{
			// GET /api/auth/google		-> Redirects to Google's consent screen
			oauth.GET("", a.GoogleRedirect)

			// GET /api/auth/google/callback -> Finishes the OAuth dance and logs the user in
			oauth.GET("/callback", a.GoogleCallback)
		}
	}

	links := main.Group("/links", auth, middleware.RequireAuth(), middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/links		-> Shortens a new URL
		links.POST("", a.LinkCreate)

		// GET /api/links		-> Lists the user's links
		links.GET("", a.LinkFetch)

		// PATCH /api/links/:slug	-> Changes a link's destination
		links.PATCH("/:slug", a.LinkEdit)

		// DELETE /api/links/:slug	-> Deletes a link owned by the user
		links.DELETE("/:slug", a.LinkDelete)
	}

	service.TokenCleanup(time.Hour, db)
	service.SessionCleanup(time.Hour, a.Tokens.RefreshTTL(), a.Sessions)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
