package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/blockstorm/internal/app"
	"github.com/dshills/blockstorm/internal/dnd"
	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

func newShowCmd(a *App) *cobra.Command {
	var asJSON, withLayout bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the document outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withApp(cmd, false, func(_ context.Context, application *app.Application) error {
				doc := application.Engine().Document()
				out := cmd.OutOrStdout()
				if asJSON {
					data, err := node.EncodeDocument(doc)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, string(data))
					return err
				}
				layout := application.Layout()
				doc.Walk(func(p path.Path, n *node.Node) bool {
					line := fmt.Sprintf("%-10s %*s%s", p, 2*(p.Depth()-1), "", n.Type)
					if n.HasText() {
						line += fmt.Sprintf(" %q", n.PlainText())
					}
					if withLayout {
						if r, ok := layout.Rect(p); ok {
							line += " " + r.String()
						}
					}
					fmt.Fprintln(out, line)
					return true
				})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the document as JSON")
	cmd.Flags().BoolVar(&withLayout, "layout", false, "Append each block's rectangle")
	return cmd
}

func newMoveCmd(a *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a block to an insertion path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromPath, err := parsePath("from", from)
			if err != nil {
				return writeErr(cmd, err)
			}
			toPath, err := parsePath("to", to)
			if err != nil {
				return writeErr(cmd, err)
			}
			return a.withApp(cmd, true, func(ctx context.Context, application *app.Application) error {
				ev, err := application.Move(ctx, fromPath, toPath)
				if err != nil {
					return err
				}
				printChange(cmd, application, ev)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Path of the block to move (e.g. 0.1)")
	cmd.Flags().StringVar(&to, "to", "", "Insertion path, against the tree before the move")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newDropCmd(a *App) *cobra.Command {
	var (
		drag   string
		x, y   float64
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop a dragged block at a point of the stacked layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dragged, err := parsePath("drag", drag)
			if err != nil {
				return writeErr(cmd, err)
			}
			pt := dnd.Pt(x, y)
			if dryRun {
				return a.withApp(cmd, false, func(_ context.Context, application *app.Application) error {
					ind, err := application.Engine().ResolveDrag(dragged, pt)
					if err != nil {
						return err
					}
					printIndicator(cmd, ind)
					return nil
				})
			}
			return a.withApp(cmd, true, func(ctx context.Context, application *app.Application) error {
				ind, ev, err := application.Drop(ctx, dragged, pt)
				if err != nil {
					return err
				}
				printIndicator(cmd, ind)
				printChange(cmd, application, ev)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&drag, "drag", "", "Path of the dragged block")
	cmd.Flags().Float64Var(&x, "x", 0, "Pointer x")
	cmd.Flags().Float64Var(&y, "y", 0, "Pointer y")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print the drop indicator")
	_ = cmd.MarkFlagRequired("drag")
	return cmd
}

func newImportHTMLCmd(a *App) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "import-html FILE",
		Short: "Insert the blocks of an HTML file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target path.Path
			if at != "" {
				p, err := parsePath("at", at)
				if err != nil {
					return writeErr(cmd, err)
				}
				target = p
			}
			return a.withApp(cmd, true, func(ctx context.Context, application *app.Application) error {
				in := cmd.InOrStdin()
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return err
					}
					defer f.Close()
					in = f
				}
				ev, err := application.ImportHTML(ctx, in, target)
				if err != nil {
					return err
				}
				printChange(cmd, application, ev)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Insertion path (default: end of document)")
	return cmd
}

func newUndoCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last recorded change",
		Long:  "Revert the last recorded change. Requires a change store, since undo history does not outlive a process.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withApp(cmd, true, func(ctx context.Context, application *app.Application) error {
				ev, err := application.RevertLast(ctx)
				if err != nil {
					return err
				}
				printChange(cmd, application, ev)
				return nil
			})
		},
	}
}

func newLogCmd(a *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded changes, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withApp(cmd, false, func(ctx context.Context, application *app.Application) error {
				changes, err := application.History(ctx, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, c := range changes {
					fmt.Fprintf(out, "r%d %s %-12s %q\n", c.Revision, c.CommittedAt.Format("2006-01-02T15:04:05"), c.Reason, c.Description)
					for _, op := range c.Operations {
						fmt.Fprintf(out, "    %s\n", op)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of changes to show")
	return cmd
}

func printChange(cmd *cobra.Command, application *app.Application, ev *engine.ChangeEvent) {
	fmt.Fprintf(cmd.OutOrStdout(), "r%d %s (%d operations)\n", application.Revision(ev.Revision), ev.Description, len(ev.Operations))
}

func printIndicator(cmd *cobra.Command, ind *dnd.Indicator) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s -> insert at %s\n", ind.Target.Intent, ind.Target.Node, ind.Target.Insert)
	for _, seg := range ind.Segments {
		fmt.Fprintf(out, "  %s %s\n", ind.Kind, seg)
	}
}
