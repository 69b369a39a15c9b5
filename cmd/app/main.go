package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/storagekit/internal"
	pkgconfig "github.com/starford/storagekit/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("root"); root != "" {
		cfg.Storage.Root = root
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func newApp() *cli.Command {
	cmd := &cli.Command{
		Name:  "storagekit",
		Usage: "Files and folders behind one storage contract, served over REST, SSE and MCP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Served root folder (overrides storage.root)",
				Sources: cli.EnvVars("STORAGEKIT_ROOT"),
			},
		},
	}

	cmd.Commands = append([]*cli.Command{
		{
			Name:   "serve",
			Usage:  "Serve the REST API, the SSE stream and the catalog watcher",
			Action: serve,
		},
		{
			Name:   "mcp",
			Usage:  "Serve the MCP tools on stdin/stdout",
			Action: serveMCP,
		},
	}, itemCommands()...)
	cmd.Commands = append(cmd.Commands, pickCommand(), whereCommand())
	return cmd
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
