package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cinerec/cinerec/internal/config"
)

func CORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.Security.CORS.AllowedOrigins,
		AllowMethods:     cfg.Security.CORS.AllowedMethods,
		AllowHeaders:     cfg.Security.CORS.AllowedHeaders,
		AllowCredentials: false,
	}

	// Wildcard origins and credentials are mutually exclusive;
	// credentials only make sense with a pinned origin list.
	if len(cfg.Security.CORS.AllowedOrigins) > 0 && cfg.Security.CORS.AllowedOrigins[0] != "*" {
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}
