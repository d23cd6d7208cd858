package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zordinals/zordinals/log"
	"github.com/zordinals/zordinals/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the content-serving HTTP endpoint (the only in-scope slice of the HTTP façade).",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "address to listen on")
}

// runServe mirrors the teacher's srv.go: build the gin engine, run it on
// its own goroutine, and drain it on SIGINT/SIGTERM instead of dying
// mid-request.
func runServe(_ *cobra.Command, _ []string) error {
	recon, resolver, contentStore, err := buildCore()
	if err != nil {
		return err
	}

	handler := server.New(recon, resolver, contentStore)
	engine := server.NewEngine(handler)
	httpSrv := &http.Server{Addr: serveAddr, Handler: engine}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case <-interrupt:
		log.Srv.Infof("shutting down %s", serveAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Srv.Errorf("shutdown: %v", err)
			return err
		}
		return nil
	}
}
