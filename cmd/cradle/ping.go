package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/cradle/bootstrap"
	"github.com/kbukum/cradle/component"
)

func newPingCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server answers on /",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := g.newApp(cmd)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context, a *bootstrap.App) error {
				h := a.Client.Health(ctx)
				d := a.Client.Describe()
				line := d.Details + " " + string(h.Status)
				if h.Message != "" {
					line += ": " + h.Message
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				if h.Status != component.StatusHealthy {
					return fmt.Errorf("%s is %s", d.Name, h.Status)
				}
				return nil
			})
		},
	}
}
