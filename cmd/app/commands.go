package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/starford/storagekit/internal"
	"github.com/starford/storagekit/internal/models"
	"github.com/starford/storagekit/internal/prompt"
	"github.com/starford/storagekit/pkg/storage"
)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func collisionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "collision",
		Usage: "What to do when the name is taken: " + strings.Join(storage.CollisionNames(), ", ") + " (default from config)",
	}
}

func nameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "name",
		Usage: "New name at the destination",
	}
}

// withWorkspace opens the configured root for a single command. Logs go to
// stderr so they never mix with command output.
func withWorkspace(fn func(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ws, err := internal.Open(internal.WithConfig(cfg), internal.WithLogOutput(stderr))
		if err != nil {
			return err
		}
		defer ws.Close()
		return fn(ctx, cmd, ws)
	}
}

func collision(cmd *cli.Command, ws *internal.Workspace) (storage.CollisionOption, error) {
	raw := cmd.String("collision")
	if raw == "" {
		return ws.Config.Storage.Collision(), nil
	}
	return storage.ParseCollisionOption(raw)
}

func arg(cmd *cli.Command, i int, name string) (string, error) {
	if cmd.Args().Len() <= i {
		return "", fmt.Errorf("missing argument: %s", name)
	}
	return cmd.Args().Get(i), nil
}

func itemCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "ls",
			Usage:     "List a folder",
			ArgsUsage: "[dir]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "long", Aliases: []string{"l"}, Usage: "Show kind, size and modification time"},
			},
			Action: withWorkspace(listItems),
		},
		{
			Name:      "cat",
			Usage:     "Print a file",
			ArgsUsage: "<path>",
			Action:    withWorkspace(catFile),
		},
		{
			Name:      "write",
			Usage:     "Replace a file's content with the argument, or stdin when omitted",
			ArgsUsage: "<path> [text]",
			Action:    withWorkspace(writeFile),
		},
		{
			Name:      "touch",
			Usage:     "Create a file and its missing parent folders",
			ArgsUsage: "<path>",
			Flags:     []cli.Flag{collisionFlag()},
			Action:    withWorkspace(createFile),
		},
		{
			Name:      "mkdir",
			Usage:     "Create a folder and its missing parent folders",
			ArgsUsage: "<path>",
			Flags:     []cli.Flag{collisionFlag()},
			Action:    withWorkspace(createFolder),
		},
		{
			Name:      "cp",
			Usage:     "Copy a file or folder into a destination folder",
			ArgsUsage: "<source> [destination]",
			Flags:     []cli.Flag{collisionFlag(), nameFlag()},
			Action:    withWorkspace(copyItem),
		},
		{
			Name:      "mv",
			Usage:     "Move a file or folder into a destination folder",
			ArgsUsage: "<source> [destination]",
			Flags:     []cli.Flag{collisionFlag(), nameFlag()},
			Action:    withWorkspace(moveItem),
		},
		{
			Name:      "rename",
			Usage:     "Rename a file or folder in place",
			ArgsUsage: "<path> <name>",
			Action:    withWorkspace(renameItem),
		},
		{
			Name:      "rm",
			Usage:     "Remove a file, or a folder with its content",
			ArgsUsage: "<path>",
			Action:    withWorkspace(removeItem),
		},
		{
			Name:      "search",
			Usage:     "Search catalogued items by name or path",
			ArgsUsage: "<query>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of results"},
			},
			Action: withWorkspace(searchItems),
		},
	}
}

func listItems(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	items, err := ws.Items.List(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	if !cmd.Bool("long") {
		for _, it := range items {
			if it.IsFolder() {
				fmt.Fprintln(stdout, it.Name+"/")
				continue
			}
			fmt.Fprintln(stdout, it.Name)
		}
		return nil
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", it.Kind, it.Size, it.UpdatedAt.Local().Format(time.DateTime), it.Name)
	}
	return tw.Flush()
}

func catFile(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	p, err := arg(cmd, 0, "path")
	if err != nil {
		return err
	}
	rc, _, err := ws.Items.Open(ctx, p)
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(stdout, rc)
	return err
}

func writeFile(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	p, err := arg(cmd, 0, "path")
	if err != nil {
		return err
	}
	text := cmd.Args().Get(1)
	if cmd.Args().Len() < 2 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	info, err := ws.Items.WriteText(ctx, p, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\t%d bytes\n", info.Path, info.Size)
	return nil
}

func createFile(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	p, err := arg(cmd, 0, "path")
	if err != nil {
		return err
	}
	opt, err := collision(cmd, ws)
	if err != nil {
		return err
	}
	info, err := ws.Items.CreateFile(ctx, p, opt)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, info.Path)
	return nil
}

func createFolder(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	p, err := arg(cmd, 0, "path")
	if err != nil {
		return err
	}
	opt, err := collision(cmd, ws)
	if err != nil {
		return err
	}
	info, err := ws.Items.CreateFolder(ctx, p, opt)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, info.Path+"/")
	return nil
}

func copyItem(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	return transfer(ctx, cmd, ws, ws.Items.Copy)
}

func moveItem(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	return transfer(ctx, cmd, ws, ws.Items.Move)
}

type transferFunc = func(ctx context.Context, src, dstDir string, opt storage.CollisionOption, name string) (*models.ItemInfo, error)

func transfer(ctx context.Context, cmd *cli.Command, ws *internal.Workspace, fn transferFunc) error {
	src, err := arg(cmd, 0, "source")
	if err != nil {
		return err
	}
	opt, err := collision(cmd, ws)
	if err != nil {
		return err
	}
	info, err := fn(ctx, src, cmd.Args().Get(1), opt, cmd.String("name"))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, info.Path)
	return nil
}

func renameItem(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	p, err := arg(cmd, 0, "path")
	if err != nil {
		return err
	}
	name, err := arg(cmd, 1, "name")
	if err != nil {
		return err
	}
	info, err := ws.Items.Rename(ctx, p, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, info.Path)
	return nil
}

func removeItem(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	p, err := arg(cmd, 0, "path")
	if err != nil {
		return err
	}
	return ws.Items.Remove(ctx, p)
}

func searchItems(ctx context.Context, cmd *cli.Command, ws *internal.Workspace) error {
	q, err := arg(cmd, 0, "query")
	if err != nil {
		return err
	}
	results, err := ws.Items.Search(ctx, q, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	for _, it := range results {
		if it.IsFolder() {
			fmt.Fprintln(stdout, it.Path+"/")
			continue
		}
		fmt.Fprintln(stdout, it.Path)
	}
	return nil
}

func pickCommand() *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Usage:     "Ask for a file to open or save, or for a folder",
		ArgsUsage: "open|save|folder",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "types", Usage: "Accepted file extensions, e.g. --types txt --types md"},
			&cli.StringFlag{Name: "label", Usage: "Text shown instead of the default question"},
		},
		Action: pick,
	}
}

func pick(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := internal.NewLocalService(cfg, prompt.NewTerminal(stdin, stderr))
	if err != nil {
		return err
	}
	settings := storage.DialogSettings{
		OverrideSelectText: cmd.String("label"),
		ShownFileTypes:     cmd.StringSlice("types"),
	}

	var item storage.Item
	switch kind := cmd.Args().First(); kind {
	case "open", "":
		f, err := svc.RequestFileOpen(ctx, settings)
		if err != nil {
			return err
		}
		if f != nil {
			item = f
		}
	case "save":
		f, err := svc.RequestFileSave(ctx, settings)
		if err != nil {
			return err
		}
		if f != nil {
			item = f
		}
	case "folder":
		f, err := svc.RequestFolder(ctx, settings)
		if err != nil {
			return err
		}
		if f != nil {
			item = f
		}
	default:
		return fmt.Errorf("unknown picker %q (want open, save or folder)", kind)
	}

	if item == nil {
		fmt.Fprintln(stderr, "cancelled")
		return nil
	}
	p, err := item.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, p)
	return nil
}

func whereCommand() *cli.Command {
	return &cli.Command{
		Name:  "where",
		Usage: "Print the served root, app-data, temp and catalog locations",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, err := internal.NewLocalService(cfg, nil)
			if err != nil {
				return err
			}
			appData, _ := svc.AppDataFolder().Path()
			temp, _ := svc.TempFolder().Path()

			tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "root\t%s\n", cfg.Storage.Root)
			fmt.Fprintf(tw, "app-data\t%s\n", appData)
			fmt.Fprintf(tw, "temp\t%s\n", temp)
			fmt.Fprintf(tw, "catalog\t%s\n", cfg.Catalog.Path)
			return tw.Flush()
		},
	}
}
