package routes

import (
	"langsearch/config"
	"langsearch/internal/api/products"
	"langsearch/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, cfg config.Config) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	langs := append([]string{cfg.DefaultLang}, cfg.Languages...)

	public := r.Group("/")
	public.Use(middleware.Language(langs))
	public.GET("/products", products.ListProducts)
	public.GET("/products/search", products.SearchProducts)
	public.GET("/products/:id", products.GetProduct)

	// Editors
	edit := r.Group("/")
	edit.Use(
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.RequireRole("admin", "editor"),
		middleware.SanitizeAndCleanInputMiddleware(),
		middleware.Language(langs),
	)
	edit.POST("/products", products.CreateProduct)
	edit.PUT("/products/:id/translations/:lang", products.UpsertTranslation)
	edit.DELETE("/products/:id", products.DeleteProduct)
}
