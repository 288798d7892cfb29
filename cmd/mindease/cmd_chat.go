package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/mindease/bootstrap"
	"github.com/kbukum/mindease/companion"
)

func newChatCmd() *cobra.Command {
	var (
		user    string
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "chat [--user U] TEXT",
		Short: "Send one message to the wellness companion",
		Long: `Classifies TEXT, stores the turn in the user's conversation and prints
the companion's reply. With redis enabled the conversation is shared with
the HTTP API.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(bootstrap.WithLogger(cliLogger()), bootstrap.WithSummaryOutput(io.Discard))
			if err != nil {
				return err
			}
			rt, err := registerRuntime(app, false)
			if err != nil {
				return err
			}
			comp := rt.newCompanion()
			text := strings.Join(args, " ")
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return chat(ctx, comp, user, text, explain, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "cli", "user id of the conversation")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the classified intent")
	return cmd
}

func chat(ctx context.Context, comp *companion.Companion, user, text string, explain bool, out io.Writer) error {
	reply, err := comp.Send(ctx, user, text)
	if err != nil {
		return err
	}
	if explain {
		fmt.Fprintf(out, "[%s] ", reply.Intent)
	}
	fmt.Fprintln(out, reply.Message.Content)
	return nil
}
