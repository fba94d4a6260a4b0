package api

import (
	"mediverse/internal/config"
	"mediverse/internal/hub"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Serve(cfg config.Config, db *gorm.DB, h *hub.Hub) error {
	r := gin.Default()

	router := NewRouter(db, h, cfg)
	router.RegisterRoutes(r)

	return r.Run(":" + cfg.Port)
}
