package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/client"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/spf13/cobra"
)

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the client: monitor connectivity, sync queued mutations, refresh the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := client.NewApp(ctx, c.cfg, c.log, c.opts...)
			if err != nil {
				c.log.Error().Err(err).Msg("init client app error")
				return err
			}
			if err = app.Run(ctx); err != nil {
				c.log.Error().Err(err).Msg("client run error")
				return err
			}
			return nil
		},
	}
}

func (c *cli) enqueueCmd() *cobra.Command {
	var action, collection, payload string

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a mutation and apply it to the local cache",
		Example: `  offline-sync enqueue --collection Musicas --payload '{"musica":"Aleluia","cantor":"Coral"}'
  offline-sync enqueue --action deleteRow --collection Musicas --payload '{"id":"42"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(payload)) {
				return fmt.Errorf("payload is not valid JSON")
			}
			op, err := models.NewOperation(action, collection, json.RawMessage(payload))
			if err != nil {
				return err
			}

			return c.withApp(cmd.Context(), func(app *client.App) error {
				item, err := app.Services().Offline.EnqueueMutation(cmd.Context(), op)
				if err != nil {
					return err
				}
				return c.printJSON(item)
			})
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", models.ActionAddRow, "Mutation action (addRow, deleteRow)")
	cmd.Flags().StringVarP(&collection, "collection", "s", "", "Target collection (e.g. Musicas, Escalas)")
	cmd.Flags().StringVarP(&payload, "payload", "p", "{}", "Mutation payload as a JSON object")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}

func (c *cli) queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "queue",
		Aliases: []string{"pending"},
		Short:   "List queued mutations in replay order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(app *client.App) error {
				return c.printJSON(app.Services().Offline.PendingMutations(cmd.Context()))
			})
		},
	}
}

func (c *cli) cacheCmd() *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "cache <collection>",
		Short: "Print the cached snapshot of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *client.App) error {
				if drop {
					return app.Services().Cache.Clear(ctx, args[0])
				}
				return c.printJSON(app.Services().Offline.GetCachedCollection(ctx, args[0]))
			})
		},
	}

	cmd.Flags().BoolVar(&drop, "clear", false, "Drop the cached snapshot instead of printing it")

	return cmd
}

type statusView struct {
	Online       bool       `json:"online"`
	CheckedAt    time.Time  `json:"checked_at"`
	Pending      int        `json:"pending"`
	LastFullSync *time.Time `json:"last_full_sync,omitempty"`
	Collections  []string   `json:"cached_collections"`
	Endpoints    []string   `json:"probe_endpoints"`
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probe connectivity and show queue and cache status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *client.App) error {
				svc := app.Services()
				svc.Offline.AwaitFreshConnectivityCheck(ctx)
				state := app.Monitor().State()

				view := statusView{
					Online:    state.IsOnline,
					CheckedAt: state.LastCheckedAt,
					Pending:   svc.Queue.Len(ctx),
					Endpoints: app.Monitor().Endpoints(),
				}
				if last, ok := svc.Cache.LastFullSync(ctx); ok {
					view.LastFullSync = &last
				}
				collections, err := svc.Cache.Collections(ctx)
				if err != nil {
					return err
				}
				view.Collections = collections

				return c.printJSON(view)
			})
		},
	}
}

type drainView struct {
	Succeeded int  `json:"succeeded"`
	Rejected  int  `json:"rejected"`
	Dropped   int  `json:"dropped"`
	Stalled   bool `json:"stalled"`
	Remaining int  `json:"remaining"`
	Offline   bool `json:"offline,omitempty"`
}

func (c *cli) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued mutations against the remote service now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *client.App) error {
				app.Services().Offline.AwaitFreshConnectivityCheck(ctx)

				report, err := app.Services().Engine.Drain(ctx)
				view := drainView{
					Succeeded: report.Succeeded,
					Rejected:  report.Rejected,
					Dropped:   report.Dropped,
					Stalled:   report.Stalled,
					Remaining: report.Remaining,
				}
				switch {
				case errors.Is(err, service.ErrOffline):
					view.Offline = true
				case err != nil:
					return err
				}
				return c.printJSON(view)
			})
		},
	}
}

type refreshView struct {
	Collection string `json:"collection"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
}

func (c *cli) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Replace the cached collections with the remote contents now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *client.App) error {
				app.Services().Offline.AwaitFreshConnectivityCheck(ctx)

				report, ok := app.Services().Refresh.Refresh(ctx)
				views := make([]refreshView, 0, len(report.Collections))
				for _, r := range report.Collections {
					v := refreshView{Collection: r.Collection, Records: r.Records}
					if r.Err != nil {
						v.Error = r.Err.Error()
					}
					views = append(views, v)
				}
				if err := c.printJSON(views); err != nil {
					return err
				}
				if !ok {
					return errRefreshIncomplete
				}
				return nil
			})
		},
	}
}

var errRefreshIncomplete = errors.New("refresh incomplete")
