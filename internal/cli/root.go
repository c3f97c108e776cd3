// Package cli implements the blockstorm command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/blockstorm/internal/app"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// App holds the persistent flags.
type App struct {
	DocPath    string
	ConfigPath string
	StorePath  string
	DocID      string
	LogLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "blockstorm",
		Short:        "Edit block documents from the command line",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Print the outline of a document
  blockstorm --doc notes.json show

  # Drag block 1 onto the top band of block 0
  blockstorm --doc notes.json drop --drag 1 --x 10 --y 2

  # Paste HTML at the end of the document, recording the change
  blockstorm --doc notes.json --store changes.db import-html page.html

  # Show recorded changes
  blockstorm --doc notes.json --store changes.db log
`),
	}

	cmd.PersistentFlags().StringVar(&a.DocPath, "doc", envOr("BLOCKSTORM_DOC", ""), "Document JSON file")
	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", envOr("BLOCKSTORM_CONFIG", ""), "TOML configuration file")
	cmd.PersistentFlags().StringVar(&a.StorePath, "store", "", "sqlite change log (overrides [store] path)")
	cmd.PersistentFlags().StringVar(&a.DocID, "doc-id", "", "Document key in the change log (default: document file name)")
	cmd.PersistentFlags().StringVar(&a.LogLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newShowCmd(a))
	cmd.AddCommand(newMoveCmd(a))
	cmd.AddCommand(newDropCmd(a))
	cmd.AddCommand(newImportHTMLCmd(a))
	cmd.AddCommand(newLogCmd(a))
	cmd.AddCommand(newUndoCmd(a))

	return cmd
}

// open starts an application for one command.
func (a *App) open(ctx context.Context, cmd *cobra.Command, readOnly bool) (*app.Application, error) {
	return app.New(ctx, app.Options{
		ConfigPath:   a.ConfigPath,
		DocumentPath: a.DocPath,
		DocID:        a.DocID,
		StorePath:    a.StorePath,
		LogLevel:     a.LogLevel,
		LogOutput:    cmd.ErrOrStderr(),
		ReadOnly:     readOnly,
	})
}

// withApp runs fn against a started application and closes it, saving the
// document first when the command edits it.
func (a *App) withApp(cmd *cobra.Command, edits bool, fn func(ctx context.Context, application *app.Application) error) error {
	if edits && a.DocPath == "" {
		return writeErr(cmd, fmt.Errorf("--doc is required"))
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	application, err := a.open(ctx, cmd, !edits)
	if err != nil {
		return writeErr(cmd, err)
	}
	runErr := fn(ctx, application)
	if runErr == nil && edits {
		runErr = application.Save("")
	}
	if err := application.Close(ctx); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	return nil
}

func parsePath(flag, s string) (path.Path, error) {
	p, err := path.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return p, nil
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
