package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/config"
	"max.ks1230/tcmb-rates/internal/logger"
)

var (
	rootCmd = &cobra.Command{
		Use:           "ratesctl",
		Short:         "Maintenance commands for the TCMB rates store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the ratesctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	cfgFile string
	version = "dev"
)

func loadConfig() (*config.Service, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.New()
}

func main() {
	defer logger.Sync()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	rootCmd.AddCommand(versionCmd, migrateCmd, ingestCmd, healthCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("ratesctl failed", zap.Error(err))
		os.Exit(1)
	}
}
