package main

import (
	"context"
	"defectboard/app"
	"defectboard/common"
	"defectboard/config"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "defectboard",
		Short:        "Defect tracking front end service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logrus.Info("service start")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			common.ConfigureLogger(cfg.Log.Level, cfg.Log.Format)

			a, err := app.New(context.Background(), cfg)
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: ./defectboard.yaml or /etc/defectboard/defectboard.yaml)")

	if err := root.Execute(); err != nil {
		logrus.Errorf("service failed: %v", err)
		os.Exit(1)
	}
}
