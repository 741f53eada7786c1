package main

import (
	"defectboard/apiclient"
	"defectboard/common"
	"defectboard/config"

	"github.com/spf13/cobra"
)

// cli carries what the subcommands share once flags are parsed.
type cli struct {
	configPath string
	baseURL    string
	jsonOutput bool

	cfg    *config.Config
	client *apiclient.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "defectctl <command>",
		Short:         "Terminal front end for the defect tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if c.baseURL != "" {
				cfg.API.BaseURL = c.baseURL
			}
			common.ConfigureLogger(cfg.Log.Level, cfg.Log.Format)
			c.cfg = cfg
			c.client = apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file")
	root.PersistentFlags().StringVar(&c.baseURL, "api-url", "", "backend base url, overrides api.base_url")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "output as JSON")

	root.AddGroup(
		&cobra.Group{ID: "pages", Title: "Pages:"},
		&cobra.Group{ID: "workflow", Title: "Workflow:"},
	)
	root.AddCommand(
		c.projectsCmd(),
		c.defectsCmd(),
		c.releasesCmd(),
		c.testCasesCmd(),
		c.dashboardCmd(),
		c.configurationsCmd(),
		c.allocationsCmd(),
		c.workflowCmd(),
	)
	return root
}
