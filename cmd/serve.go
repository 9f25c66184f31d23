package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/api"
	"github.com/abhisek/smartstudy/internal/store"
)

func newServeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library over a small HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.withStore(ctx, func(st *store.Store) error {
				addr := e.cfg.Serve.Addr
				fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s/api\n", addr)
				return api.New(st, e.progress(st), e.logger).Run(ctx, addr)
			})
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8088)")
	cobra.CheckErr(e.v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr")))
	return cmd
}
