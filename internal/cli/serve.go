package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MaTriXy/babysitter-sub001/internal/api"
	"github.com/MaTriXy/babysitter-sub001/internal/catalog"
	"github.com/MaTriXy/babysitter-sub001/internal/config"
	vlog "github.com/MaTriXy/babysitter-sub001/internal/log"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Serve the process catalog and run control over HTTP",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logFile := openLogFile()
		var logWriter io.Writer
		if logFile != nil {
			logWriter = logFile
			defer logFile.Close()
		}
		vlog.Init(cfg.LogLevel, logWriter)

		dispatcher, err := buildDispatcher(cfg)
		if err != nil {
			return err
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := api.NewServer(catalog.Registry(), dispatcher)
		srv.Persist = true
		vlog.Info("serving API", "addr", addr)
		return srv.Start(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}
