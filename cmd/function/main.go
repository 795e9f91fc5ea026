// Command function is the Lambda entry point. GALLERY_FUNCTION picks which function it serves.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"

	"github.com/weddinggallery/internal/config"
	"github.com/weddinggallery/internal/function"
	"github.com/weddinggallery/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)
	gin.SetMode(cfg.GinMode)

	h, err := function.New(cfg.Function, cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("GALLERY_FUNCTION must be one of photos, videos, auth, migrate-photos")
	}

	lambda.Start(h.Invoke)
}
