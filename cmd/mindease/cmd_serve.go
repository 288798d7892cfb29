package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/mindease/proxy"
	"github.com/kbukum/mindease/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transcription proxy and companion HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if _, err := wireServer(app); err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}

// wireServer registers the runtime and the HTTP server on app.
func wireServer(app *application) (*server.Server, error) {
	rt, err := registerRuntime(app, true)
	if err != nil {
		return nil, err
	}
	srv := server.New(app.Cfg.Server, app.Logger)
	srv.ApplyMiddleware(rt.metrics)
	srv.RegisterDefaultEndpoints(app.Name, app.Components.HealthAll)
	var opts []proxy.HandlerOption
	if rt.audio != nil {
		opts = append(opts, proxy.WithAudioArchive(rt.audio))
	}
	proxy.NewHandler(rt.provider, rt.transcripts, rt.newCompanion(), app.Cfg.Proxy, app.Logger, opts...).
		Register(srv.Engine())
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}
	return srv, nil
}
