package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cppla/sbb/config"
	"github.com/cppla/sbb/models"
	"github.com/cppla/sbb/routes"
	"github.com/cppla/sbb/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)
	cache := utils.NewCache(utils.NewRedis(cfg), 0)

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	r := routes.SetupRouter(cfg, routes.Deps{DB: db, Cache: cache, Registry: registry})

	utils.Sugar.Infof("Starting server on port %s (profile=%s)", cfg.AppPort, cfg.Profile)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
