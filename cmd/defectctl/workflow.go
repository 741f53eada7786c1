package main

import (
	"context"
	"defectboard/app"
	"defectboard/domain/workflow"
	"defectboard/kv"
	"defectboard/pages"
	"defectboard/persistence"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// openEditor loads the workflow from the configured storage. The returned func releases it.
func (c *cli) openEditor(ctx context.Context) (*workflow.Editor, func(), error) {
	var ds *persistence.DataSourceManager
	release := func() {}
	if c.cfg.Workflow.Storage == "database" {
		var err error
		if ds, err = app.OpenDatabase(c.cfg.Database); err != nil {
			return nil, nil, err
		}
		release = ds.Stop
	}
	store, err := kv.Open(c.cfg, ds)
	if err != nil {
		release()
		return nil, nil, err
	}
	editor := workflow.Load(ctx, store, workflow.Options{
		AllowParallelEdges: c.cfg.Workflow.AllowParallelEdges,
		IDs:                workflow.NewIDGenerator(c.cfg.Workflow.IDStrategy),
	})
	return editor, release, nil
}

// workflowView renders the graph with the same tables as the pages.
type workflowView struct {
	nodes *pages.ListPage[workflow.Node]
	edges *pages.ListPage[workflow.Edge]
}

func newWorkflowView(ctx context.Context, s workflow.Snapshot) *workflowView {
	v := &workflowView{
		nodes: pages.NewListPage("Statuses", func(context.Context) ([]workflow.Node, error) { return s.Nodes, nil },
			pages.Column[workflow.Node]{Header: "ID", Value: func(n workflow.Node) string { return n.ID }},
			pages.Column[workflow.Node]{Header: "Label", Value: func(n workflow.Node) string { return n.Label }},
			pages.Column[workflow.Node]{Header: "Color", Value: func(n workflow.Node) string { return n.Color }},
			pages.Column[workflow.Node]{Header: "Position", Value: func(n workflow.Node) string {
				return fmt.Sprintf("%g,%g", n.Position.X, n.Position.Y)
			}},
		),
		edges: pages.NewListPage("Transitions", func(context.Context) ([]workflow.Edge, error) { return s.Edges, nil },
			pages.Column[workflow.Edge]{Header: "ID", Value: func(e workflow.Edge) string { return e.ID }},
			pages.Column[workflow.Edge]{Header: "From", Value: func(e workflow.Edge) string { return e.Source }},
			pages.Column[workflow.Edge]{Header: "To", Value: func(e workflow.Edge) string { return e.Target }},
		),
	}
	v.nodes.Load(ctx)
	v.edges.Load(ctx)
	return v
}

func (v *workflowView) Render(w io.Writer) error {
	_, err := io.WriteString(w, lipgloss.JoinVertical(lipgloss.Left, v.nodes.View(), "", v.edges.View())+"\n")
	return err
}

func (c *cli) workflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflow",
		Short:   "Inspect and edit the defect status workflow",
		GroupID: "workflow",
	}

	// run opens the editor, applies fn and prints the resulting graph.
	run := func(fn func(ctx context.Context, editor *workflow.Editor) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			editor, release, err := c.openEditor(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := fn(cmd.Context(), editor); err != nil {
				return err
			}
			s := editor.Snapshot()
			return c.show(cmd.OutOrStdout(), newWorkflowView(cmd.Context(), s), s)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print statuses and transitions",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, editor *workflow.Editor) error {
				return nil
			}),
		},
		&cobra.Command{
			Use:   "connect <source-id> <target-id>",
			Short: "Allow a transition between two statuses",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(ctx context.Context, editor *workflow.Editor) error {
					_, err := editor.Connect(ctx, args[0], args[1])
					return err
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "add-node <label>",
			Short: "Add a status from the palette or with a new label",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(ctx context.Context, editor *workflow.Editor) error {
					entry := workflow.PaletteEntry{Label: args[0]}
					for _, p := range workflow.DefaultPalette {
						if p.Label == args[0] {
							entry = p
						}
					}
					_, err := editor.AddNode(ctx, entry, workflow.Position{})
					return err
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "delete-node <id>",
			Short: "Remove a status and its transitions",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(ctx context.Context, editor *workflow.Editor) error {
					return editor.DeleteNode(ctx, args[0])
				})(cmd, args)
			},
		},
	)
	return cmd
}
