package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vector-admin/backend/internal/config"
	"github.com/vector-admin/backend/internal/db"
	"github.com/vector-admin/backend/internal/handler"
	"github.com/vector-admin/backend/internal/model"
	"github.com/vector-admin/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	store := &db.Postgres{Pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	tokens, err := service.NewTokenIssuer(cfg.Auth)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	authSvc := service.NewAuthService(store, tokens)
	if cfg.App.AdminEmail != "" && cfg.App.AdminPassword != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.App.AdminEmail, cfg.App.AdminPassword); err != nil {
			log.Fatalf("admin bootstrap: %v", err)
		}
	}

	auditSvc := service.NewAuditService(store)
	userSvc := service.NewUserService(store)
	vectorSvc := service.NewVectorService(store, auditSvc)

	router := gin.Default()
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.CORSMiddleware(cfg.App.CORSOrigins, true))

	router.GET("/health", handler.Health)

	authHandler := handler.NewAuthHandler(authSvc)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/refresh", authHandler.Refresh)

	authed := router.Group("/", handler.AuthMiddleware(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	admin := authed.Group("/", handler.RequireRole(authSvc, model.RoleAdmin))

	userHandler := handler.NewUserHandler(userSvc)
	admin.POST("/users", userHandler.Create)
	admin.GET("/users", userHandler.List)
	admin.DELETE("/users/:id", userHandler.Delete)

	collectionHandler := handler.NewCollectionHandler(vectorSvc)
	authed.GET("/collections", collectionHandler.List)
	admin.POST("/collections", collectionHandler.Create)
	admin.DELETE("/collections/:name", collectionHandler.Delete)

	pointHandler := handler.NewPointHandler(vectorSvc)
	authed.POST("/points", pointHandler.Upsert)
	authed.GET("/points/:collection", pointHandler.Get)
	authed.DELETE("/points", pointHandler.Delete)

	searchHandler := handler.NewSearchHandler(vectorSvc)
	authed.POST("/search", searchHandler.Search)

	auditHandler := handler.NewAuditHandler(auditSvc)
	admin.GET("/audit", auditHandler.List)

	addr := ":" + cfg.App.Port
	log.Printf("%s listening on %s", cfg.App.Name, addr)
	if err := router.Run(addr); err != nil {
		log.Fatal(err)
	}
}
