package main

import (
	"defectboard/pages"
	"fmt"

	"github.com/spf13/cobra"
)

func requireProject(cmd *cobra.Command) (int64, error) {
	projectID, _ := cmd.Flags().GetInt64("project")
	if projectID <= 0 {
		return 0, fmt.Errorf("--project is required")
	}
	return projectID, nil
}

func (c *cli) projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "projects",
		Short:   "List projects",
		GroupID: "pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page := pages.NewProjectsPage(c.client)
			page.Load(cmd.Context())
			return c.show(cmd.OutOrStdout(), page, page.State())
		},
	}
}

func (c *cli) defectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "defects",
		Short:   "List defects of a project",
		GroupID: "pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := requireProject(cmd)
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")
			severity, _ := cmd.Flags().GetString("severity")

			page := pages.NewDefectsPage(c.client)
			page.Filter(status, severity)
			page.Select(cmd.Context(), projectID)
			return c.show(cmd.OutOrStdout(), page, page.State())
		},
	}
	cmd.Flags().Int64("project", 0, "project id")
	cmd.Flags().String("status", "", "only defects in this status")
	cmd.Flags().String("severity", "", "only defects of this severity")
	return cmd
}

func (c *cli) releasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "releases",
		Short:   "List releases of a project",
		GroupID: "pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := requireProject(cmd)
			if err != nil {
				return err
			}
			page := pages.NewReleasesPage(c.client, projectID)
			page.Load(cmd.Context())
			return c.show(cmd.OutOrStdout(), page, page.State())
		},
	}
	cmd.Flags().Int64("project", 0, "project id")
	return cmd
}

func (c *cli) testCasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "testcases",
		Short:   "List test cases of a project",
		GroupID: "pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := requireProject(cmd)
			if err != nil {
				return err
			}
			page := pages.NewTestCasesPage(c.client, projectID)
			page.Load(cmd.Context())
			return c.show(cmd.OutOrStdout(), page, page.State())
		},
	}
	cmd.Flags().Int64("project", 0, "project id")
	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Short:   "Show defect statistics of a project",
		GroupID: "pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := requireProject(cmd)
			if err != nil {
				return err
			}
			page := pages.NewDashboardPage(c.client, projectID)
			page.Load(cmd.Context())
			return c.show(cmd.OutOrStdout(), page, page.State())
		},
	}
	cmd.Flags().Int64("project", 0, "project id")
	return cmd
}

func (c *cli) configurationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "configurations",
		Short:   "List defect statuses, release types and designations",
		GroupID: "pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page := pages.NewConfigurationsPage(c.client)
			page.Load(cmd.Context())
			return c.show(cmd.OutOrStdout(), page, page.State())
		},
	}
	return cmd
}

func (c *cli) allocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "allocations",
		Short:   "List employee allocations of a project",
		GroupID: "pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := requireProject(cmd)
			if err != nil {
				return err
			}
			page := pages.NewAllocationsPage(c.client, projectID)
			page.Load(cmd.Context())
			return c.show(cmd.OutOrStdout(), page, page.State())
		},
	}
	cmd.Flags().Int64("project", 0, "project id")
	return cmd
}

