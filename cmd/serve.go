package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/maintinsight/maintinsight/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP upload service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis service",
	Long: `Serve the analysis pipeline over HTTP.

Routes:
  GET  /healthz      liveness probe
  GET  /v1/model     loaded classifier description
  POST /v1/analyze   CSV body, JSON report (add ?records=false to omit records)

Examples:
  maintinsight serve --addr :8080 --model-path model.yaml
  curl --data-binary @fleet.csv localhost:8080/v1/analyze?records=false`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		return loadModel()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(cfg, modelHandle, cacheManager).ListenAndServe(ctx)
	},
}
