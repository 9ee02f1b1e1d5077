package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// Auth endpoints answer browser form posts, so outcomes travel as
// redirects: success to the landing page, failures back to the
// originating form with a short error code the frontend turns into a
// flash message.
func redirectWithError(c *gin.Context, formPath, code string) {
	c.Redirect(http.StatusFound, formPath+"?error="+url.QueryEscape(code))
}

func landingPath() string  { return viper.GetString("app.landing_path") }
func loginPath() string    { return viper.GetString("app.login_path") }
func registerPath() string { return viper.GetString("app.register_path") }
