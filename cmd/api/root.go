package main

import (
	"fmt"

	"github.com/justsurfingit/hireflow/internal/config"
	"github.com/justsurfingit/hireflow/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const app = "hireflow"

var (
	cfgFile string
	v       = viper.New()

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "hireflow accepts job applications, scores résumés and tracks application status",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hireflow.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = v.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json"))
}

// setup loads the configuration and builds the logger shared by subcommands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}
