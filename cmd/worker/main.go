package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/cache"
	"github.com/mweidenbach/TubeRank/internal/pkg/database"
	"github.com/mweidenbach/TubeRank/internal/pkg/env"
	"github.com/mweidenbach/TubeRank/internal/pkg/jobqueue"
)

// Standalone analysis worker. Consumes keyword analysis and report export
// jobs from the shared Redis queue; can run on a separate host from the web
// frontend.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	manager := jobqueue.GetManager()
	manager.Start()
	log.Info("[Worker] Analysis worker running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("[Worker] Shutting down...")
	manager.Stop()
}
