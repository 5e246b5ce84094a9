package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/BookRAG/internal/app"
	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/handlers"
	"github.com/akolanti/BookRAG/internal/middleware"
	"github.com/akolanti/BookRAG/internal/server"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

func main() {
	settings, err := config.Load()
	logger_i.Init(settings.LogLevel, settings.LogJSON)
	var logger = logger_i.NewLogger("main")
	if err != nil {
		logger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	flag.StringVar(&settings.ListenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	logger.Info("Starting services")
	services, err := app.Build(serviceContext, settings)
	if err != nil {
		logger.Error("One or more services failed to initialize. Shutting down.", "err", err)
		return
	}

	//init worker pool
	services.Pool.Start()

	h := handlers.New(handlers.Dependencies{
		Chat:     services.Chat,
		Answers:  services.Answers,
		Ingestor: services.Ingestor,
		Jobs:     services.Jobs,
		Index:    services.Index,
		AppName:  settings.AppName,
		Version:  settings.AppVersion,
		Prefix:   settings.APIPrefix,
	})
	router := server.NewRouter(h, middleware.New(settings), settings.APIPrefix)
	srv := server.CreateServer(settings.ListenAddr, router)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		StopWorkers:      services.Pool.Stop,
		CloseServices:    closeExternalServices,
	}
	go srv.ShutDownHandler(shutdownParams)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			gracefulShutdown <- syscall.SIGTERM
		}
	}()

	<-stopExecution
	logger.Info("Server stopped")
}
