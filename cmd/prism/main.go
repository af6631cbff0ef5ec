package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prismtech.dev/internal/config"
	"prismtech.dev/internal/logging"
	"prismtech.dev/internal/services"
	"prismtech.dev/internal/store"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Prism Tech content API",
	Long: `prism serves the Prism Tech website API and manages its content.

Configuration is read from a YAML file (default prism.yaml, optional)
and overridden by environment variables such as PORT, DATABASE_PATH,
JWT_SECRET and SMTP_HOST.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "prism.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(contentCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openRegistry opens the configured backend and wires the services on it.
// The caller closes the returned backend.
func openRegistry() (store.Backend, *services.Registry, error) {
	backend, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	reg, err := services.NewRegistry(backend, cfg, logger)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return backend, reg, nil
}
