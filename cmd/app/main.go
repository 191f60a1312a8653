package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/pulse/internal"
	"github.com/starford/pulse/internal/mcpserver"
	"github.com/starford/pulse/internal/state"
	"github.com/starford/pulse/internal/tasks"
	pkgconfig "github.com/starford/pulse/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		// Run with defaults when the default config file is absent.
		if errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config") {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func openStore(cmd *cli.Command) (*state.Store, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	kv, _, err := internal.OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return state.Load(kv), func() { kv.Close() }, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()
	return mcpserver.New(store).ServeStdio()
}

func taskID(cmd *cli.Command) (int64, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("task id is required")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func tasksList(_ context.Context, cmd *cli.Command) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	filtered := tasks.List(store.Snapshot().Tasks, cmd.String("filter"))
	if len(filtered) == 0 {
		fmt.Println("no tasks")
		return nil
	}
	for _, task := range filtered {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		fmt.Printf("[%s] #%d %s\n", mark, task.ID, task.Title)
		if task.Description != "" {
			fmt.Printf("       %s\n", task.Description)
		}
	}
	return nil
}

func tasksAdd(_ context.Context, cmd *cli.Command) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := store.AddTask(cmd.Args().First(), cmd.String("description"))
	if err != nil {
		return err
	}
	fmt.Printf("added task #%d %s\n", task.ID, task.Title)
	return nil
}

func tasksDone(_ context.Context, cmd *cli.Command) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	store.ToggleTask(id)
	if task, ok := tasks.FindByID(store.Snapshot().Tasks, id); ok {
		status := "open"
		if task.Completed {
			status = "completed"
		}
		fmt.Printf("task #%d is now %s\n", task.ID, status)
		return nil
	}
	return fmt.Errorf("task %d not found", id)
}

func tasksRemove(_ context.Context, cmd *cli.Command) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	store.DeleteTask(id)
	fmt.Printf("removed task #%d\n", id)
	return nil
}

func tasksClear(_ context.Context, cmd *cli.Command) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	before := len(store.Snapshot().Tasks)
	store.ClearCompletedTasks()
	fmt.Printf("cleared %d completed tasks\n", before-len(store.Snapshot().Tasks))
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "pulse",
		Usage:  "Staff engagement hub with newsletters, feedback, surveys, and task tracking",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tool interface on stdin/stdout",
				Action: serveMCP,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:  "tasks",
				Usage: "Manage the shared task list from the command line",
				Flags: []cli.Flag{configFlag},
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List tasks",
						Action: tasksList,
						Flags: []cli.Flag{
							configFlag,
							&cli.StringFlag{
								Name:  "filter",
								Usage: "Filter tasks: all, active, or completed",
								Value: "all",
							},
						},
					},
					{
						Name:      "add",
						Usage:     "Add a task",
						ArgsUsage: "TITLE",
						Action:    tasksAdd,
						Flags: []cli.Flag{
							configFlag,
							&cli.StringFlag{
								Name:    "description",
								Aliases: []string{"d"},
								Usage:   "Optional task description",
							},
						},
					},
					{
						Name:      "done",
						Usage:     "Toggle a task's completed state",
						ArgsUsage: "ID",
						Action:    tasksDone,
						Flags:     []cli.Flag{configFlag},
					},
					{
						Name:      "rm",
						Usage:     "Remove a task",
						ArgsUsage: "ID",
						Action:    tasksRemove,
						Flags:     []cli.Flag{configFlag},
					},
					{
						Name:   "clear",
						Usage:  "Remove all completed tasks",
						Action: tasksClear,
						Flags:  []cli.Flag{configFlag},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
