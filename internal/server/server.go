package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"motoassist/internal/adapter/utils"
	"motoassist/internal/config"
	"motoassist/internal/handlers"
	"motoassist/internal/middleware"
	"motoassist/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string, handler *handlers.ChatHandler, chain *middleware.Chain) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/", chain.Wrap(handler.Welcome))
	r.Router.Post("/ask", chain.Wrap(handler.Ask))
	r.Router.Get("/history/{user_id}", chain.Wrap(handler.History))
	r.Router.Get("/history/{user_id}/{thread_id}", chain.Wrap(handler.History))
	r.Router.Post("/getchathistory", chain.Wrap(handler.GetChatHistory))
	r.Router.Post("/ingest", chain.Wrap(handler.Ingest))
	r.Router.Get("/status/{id}", chain.Wrap(handler.Status))

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Graceful shutdown complete")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
