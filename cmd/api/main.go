package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/handlers"
	"github.com/docmorph/api/internal/server"
	"github.com/docmorph/api/internal/service"
	"github.com/docmorph/api/pkg/logging"
)

var listenAddr string

func main() {

	logging.Init()
	var logger = logging.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	settings := config.LoadSettings()

	documentService, err := service.NewDocumentService(settings)
	if err != nil {
		logger.Error("Could not initialize the document service", "error", err)
		os.Exit(1)
	}

	handlers.InitHandlers(documentService)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
