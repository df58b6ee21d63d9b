package middleware

import (
	"github.com/inkwell/blog/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS builds the CORS middleware. It returns nil when no origins are configured.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	if len(cfg.Origins) == 0 {
		return nil
	}

	corsConfig := cors.DefaultConfig()
	allowAll := false
	for _, o := range cfg.Origins {
		if o == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Origins
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials && !allowAll
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}

	return cors.New(corsConfig)
}
