package cli

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/xingming/internal/logger"
	"github.com/ppiankov/xingming/internal/pipeline"
	"github.com/ppiankov/xingming/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagnosis and name analysis as a JSON API",
	Long: `Serve starts an HTTP server with:
  POST /v1/diagnose        {"chart": "..."}
  POST /v1/analyze         {"surname": "王", "given_name": "小明", "chart": "..."}
  GET  /v1/lucky-strokes   ?element=水&max=50
  GET  /v1/remedy          ?element=土&strength=weak
  GET  /healthz

Charts are accepted as text only; the server never fetches URLs for clients.
Edits to the log level in the config file apply without a restart.

Example:
  xingming serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(reloadLogLevel)
		viper.WatchConfig()
	}

	return server.New(p, cfg.Server).Run(cmd.Context())
}

// reloadLogLevel applies a changed log.level from the config file
func reloadLogLevel(e fsnotify.Event) {
	level, err := logrus.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		logger.Log.WithError(err).Warn("ignoring invalid log level in config")
		return
	}
	if level != logger.Log.GetLevel() {
		logger.Log.SetLevel(level)
		logger.Log.WithFields(logrus.Fields{"file": e.Name, "level": level}).Info("log level reloaded")
	}
}
