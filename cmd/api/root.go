package main

import (
	"github.com/spf13/cobra"

	"accountsvc/internal/config"
)

var configFile string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "accountsvc",
		Short:        "User account service",
		Long:         `accountsvc serves signup, login, profile and password reset over HTTP.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

func loadConfig() (*config.AppConfig, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}
