package main

import (
	"context"
	"os"
	"time"

	"github.com/patrickmn/go-cache"

	historicalapi "company_historicals/pkg/api/historical"
	"company_historicals/pkg/core/companies/service"
	"company_historicals/pkg/core/config"
	"company_historicals/pkg/core/registry"
	"company_historicals/pkg/core/store"
	"company_historicals/pkg/logger"
)

func main() {
	appCfg := config.LoadEnv()
	logger.Init(appCfg.LogLevel)

	tuning, err := config.Load(appCfg.TuningPath)
	if err != nil {
		logger.L.Error("Failed to load company type config", "path", appCfg.TuningPath, "error", err)
		os.Exit(1)
	}

	reg, err := registry.Default(tuning)
	if err != nil {
		logger.L.Error("Failed to build registry", "error", err)
		os.Exit(1)
	}
	logger.L.Info("Company types registered", "types", reg.Keys())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runs, err := store.Open(ctx, appCfg.DatabaseURL, appCfg.ResultsDir)
	if err != nil {
		logger.L.Error("Failed to open run store", "error", err)
		os.Exit(1)
	}
	defer runs.Close()
	logger.L.Info("Run store ready", "backend", runs.Backend())

	results := cache.New(15*time.Minute, 30*time.Minute)
	standardHours := tuning.For(service.Key).Get("standard_hours_per_period", service.DefaultStandardHours)
	handler := historicalapi.NewHandler(reg, runs, results, standardHours)
	router := historicalapi.NewRouter(handler, appCfg.LogLevel != "debug")

	addr := ":" + appCfg.Port
	logger.L.Info("API server starting", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.L.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
