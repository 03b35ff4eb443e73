package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/partsdesk/partsdesk/internal/server"
	"github.com/partsdesk/partsdesk/modules"
	"github.com/partsdesk/partsdesk/modules/core/domain/aggregates/user"
	"github.com/partsdesk/partsdesk/modules/core/services"
	"github.com/partsdesk/partsdesk/pkg/application"
	"github.com/partsdesk/partsdesk/pkg/composables"
	"github.com/partsdesk/partsdesk/pkg/configuration"
	"github.com/partsdesk/partsdesk/pkg/eventbus"
	"github.com/partsdesk/partsdesk/pkg/logging"
)

func main() {
	root := &cobra.Command{
		Use:          "partsdesk",
		Short:        "Parts catalog backend",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration, connects the pool and registers all
// modules.
func bootstrap(ctx context.Context) (*configuration.Configuration, *pgxpool.Pool, application.Application, error) {
	conf := configuration.Use()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Logger:   conf.Logger(),
	})
	if err := modules.Load(app); err != nil {
		return nil, nil, nil, fmt.Errorf("load modules: %w", err)
	}

	// Every domain event ends up in the log, which is what the admin
	// activity views and incident digging lean on.
	logger := conf.Logger()
	app.EventPublisher().Subscribe(func(event interface{}) {
		logger.WithField("event", fmt.Sprintf("%T", event)).Info("domain event")
	})
	return conf, pool, app, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run database migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			conf, pool, app, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			defer conf.Unload()

			if conf.OpenTelemetry.Enabled {
				shutdown := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.Endpoint)
				defer shutdown()
			}

			if err := app.Migrations().Up(ctx); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}

			srv, err := server.Default(&server.DefaultOptions{
				Logger:        conf.Logger(),
				Configuration: conf,
				Application:   app,
				Pool:          pool,
			})
			if err != nil {
				return err
			}

			conf.Logger().WithField("address", conf.SocketAddress).Info("listening")
			return srv.Start(conf.SocketAddress)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conf, pool, app, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			defer conf.Unload()

			switch args[0] {
			case "up":
				return app.Migrations().Up(ctx)
			case "down":
				return app.Migrations().Down(ctx)
			default:
				return fmt.Errorf("unknown direction %q", args[0])
			}
		},
	}
}

func seedCmd() *cobra.Command {
	var email, password, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			conf, pool, app, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			defer conf.Unload()

			if err := app.Migrations().Up(ctx); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}

			ctx = composables.WithPool(ctx, pool)
			users := app.Service(services.UserService{}).(*services.UserService)

			if _, err := users.GetByEmail(ctx, email); err == nil {
				conf.Logger().WithField("email", email).Info("admin user already exists, nothing to do")
				return nil
			}

			admin := user.New(email, firstName, lastName, user.RoleAdmin)
			if err := users.Create(ctx, admin, password); err != nil {
				return fmt.Errorf("create admin user: %w", err)
			}
			conf.Logger().WithField("email", email).Info("admin user created")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "admin@localhost", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&firstName, "first-name", "Admin", "admin first name")
	cmd.Flags().StringVar(&lastName, "last-name", "User", "admin last name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
