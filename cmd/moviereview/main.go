package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	_ "go.uber.org/automaxprocs"

	"moviereview/internal/conf"
	"moviereview/internal/data"
	"moviereview/internal/pkg/zaplog"
	"moviereview/internal/server"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "moviereview"
	// Version is the version of the compiled software.
	Version = "dev"

	id, _ = os.Hostname()
)

func newApp(logger log.Logger, gs *grpc.Server, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			gs,
			hs,
		),
	)
}

func main() {
	app := &cli.Command{
		Name:    Name,
		Version: Version,
		Usage:   "Movie review service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "conf",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "config path, eg: --conf configs/config.yaml",
				Sources: cli.EnvVars("MOVIEREVIEW_CONF"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP and gRPC servers",
		Action: func(_ context.Context, cmd *cli.Command) error {
			bc, logger, err := bootstrap(cmd.String("conf"))
			if err != nil {
				return err
			}

			app, cleanup, err := wireApp(bc.Server, bc.Data, bc.Auth, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return app.Run()
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			bc, logger, err := bootstrap(cmd.String("conf"))
			if err != nil {
				return err
			}

			d, cleanup, err := data.NewData(bc.Data, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return d.Migrate(ctx)
		},
	}
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap(path string) (*conf.Bootstrap, log.Logger, error) {
	bc, err := loadConfig(path)
	if err != nil {
		return nil, nil, err
	}

	level := "info"
	if bc.Log != nil && bc.Log.Level != "" {
		level = bc.Log.Level
	}
	zl, err := zaplog.NewProduction(level)
	if err != nil {
		return nil, nil, err
	}
	logger := log.With(zl,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
		"request.id", server.RequestIDValuer(),
	)
	return bc, logger, nil
}

func loadConfig(path string) (*conf.Bootstrap, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	c := config.New(
		config.WithSource(
			env.NewSource(),
			file.NewSource(path),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if bc.Server == nil || bc.Data == nil || bc.Auth == nil {
		return nil, fmt.Errorf("config %s must define server, data and auth", path)
	}
	return &bc, nil
}
