package main

import (
	"github.com/avolkov/postline/cache"
	"github.com/avolkov/postline/config"
	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/routes"
	"github.com/avolkov/postline/storage/gormstore"
	"github.com/avolkov/postline/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	store := gormstore.New(db)

	// Home page cache lives in Redis when configured so every process
	// shares it; otherwise it stays process-local.
	var pages cache.Store
	if rc := utils.GetRedis(); rc != nil {
		pages = cache.NewRedisStore(rc)
	} else {
		utils.Sugar.Warn("redis not configured, using in-process page cache")
		pages = cache.NewMemoryStore()
	}

	r := routes.SetupRouter(store, pages)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
