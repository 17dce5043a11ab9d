package main

import (
	"context"
	"io"

	"github.com/MKhiriev/go-offline-sync/internal/client"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/spf13/cobra"
)

// cli carries the state shared by every subcommand.
type cli struct {
	out   io.Writer
	flags *config.Flags
	cfg   *config.ClientConfig
	log   *logger.Logger

	// opts lets tests inject components into the app.
	opts []client.Option
}

func newRootCmd(out io.Writer, opts ...client.Option) *cobra.Command {
	c := &cli{out: out, opts: opts}
	info := buildInfo()

	root := &cobra.Command{
		Use:           "offline-sync",
		Short:         "Offline-first client for a sheet-backed remote service",
		Long:          "offline-sync queues mutations durably while offline, replays them in order once the remote service is reachable and keeps a local cache of every collection.",
		Version:       orNA(buildVersion),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	root.SetOut(out)
	root.SetVersionTemplate(info)
	c.flags = config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		c.runCmd(),
		c.enqueueCmd(),
		c.queueCmd(),
		c.cacheCmd(),
		c.statusCmd(),
		c.syncCmd(),
		c.refreshCmd(),
	)
	return root
}

func (c *cli) loadConfig() error {
	c.log = logger.NewClientLogger("offline-sync")

	cfg, err := config.GetClientConfig(c.flags)
	if err != nil {
		c.log.Error().Err(err).Msg("error getting configs")
		return err
	}
	logger.SetLevel(cfg.App.LogLevel)
	c.log.Debug().Any("config", cfg).Msg("received configs")

	c.cfg = cfg
	return nil
}

// withApp opens the app for a one-shot command and closes it afterwards.
func (c *cli) withApp(ctx context.Context, fn func(app *client.App) error) error {
	app, err := client.NewApp(ctx, c.cfg, c.log, c.opts...)
	if err != nil {
		c.log.Error().Err(err).Msg("init client app error")
		return err
	}

	err = fn(app)
	if cerr := app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (c *cli) printJSON(v any) error {
	return utils.EncodeJSON(c.out, v)
}
