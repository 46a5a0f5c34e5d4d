package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/disperse-validator/internal/server"
)

// serveAddr overrides server.addr from the config.
var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API",
	Long: `Serve starts an HTTP server exposing validation to front ends:

  GET  /api/status
  POST /api/validate   {"text": "..."}
  POST /api/resolve    {"text": "...", "policy": "keep-first"}

The server stops cleanly on Ctrl+C or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := appConfig.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		return server.NewServer(appConfig, appLogger.With("component", "api"), Version).Run(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from the config)")
}
