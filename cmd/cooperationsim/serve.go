package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose Prometheus metrics for running simulations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveMetrics(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 9090, "HTTP port for /metrics and /healthz")
	return cmd
}

func serveMetrics(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", port)
	slog.Info("metrics server listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
