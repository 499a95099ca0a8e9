package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cmdconfig "stylusctor/cmd/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stylusctor",
	Short: "Rewrite a Solidity constructor's deployment bytecode to activate a Stylus WASM program",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmdconfig.LoadConfig(configPath)
		lvl, err := logrus.ParseLevel(cmdconfig.AppConfig.Logging.Level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		logrus.SetLevel(lvl)
		if cmdconfig.AppConfig.Logging.File != "" {
			f, err := os.OpenFile(cmdconfig.AppConfig.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err == nil {
				logrus.SetOutput(f)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to stylusctor.yaml")
	rootCmd.AddCommand(GenerateCmd, DeployCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
