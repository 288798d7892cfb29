package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/mindease/bootstrap"
	"github.com/kbukum/mindease/logger"
)

var (
	configFile string
	envFile    string
	verbose    bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mindease",
		Short: "MindEase voice journal and wellness companion",
		Long: `mindease runs the MindEase transcription proxy and drives the voice
journal and companion from the command line.

Configuration comes from cmd/mindease/config.yml, a .env file and
environment variables such as ASSEMBLYAI_API_KEY or SERVER_PORT.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: search cmd/mindease/config.yml, ./config.yml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file (default: search .env)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newServeCmd(), newTranscribeCmd(), newChatCmd(), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type application = bootstrap.App[*AppConfig]

// newApp loads the configuration and creates the lifecycle around it.
func newApp(opts ...bootstrap.Option) (*application, error) {
	cfg, err := loadConfig(configFile, envFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return bootstrap.NewApp(cfg, opts...)
}

// registerRuntime wires the runtime's components into app.
func registerRuntime(app *application, withTranscription bool) (*runtime, error) {
	rt, err := newRuntime(app.Cfg, app.Logger, withTranscription)
	if err != nil {
		return nil, err
	}
	for _, c := range rt.components {
		if err := app.RegisterComponent(c); err != nil {
			return nil, err
		}
	}
	if rt.backend != nil {
		app.Summary.TrackClient("transcription", rt.backend.Name(), "http")
	}
	return rt, nil
}

func cliLogger() *logger.Logger {
	cfg := &logger.Config{Level: "warn", Format: "console", Output: "stderr"}
	if verbose {
		cfg.Level = "debug"
	}
	cfg.ApplyDefaults()
	return logger.New(cfg, serviceName)
}
