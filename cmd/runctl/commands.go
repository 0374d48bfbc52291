package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/mansukim1125/run-configurations/internal/client"
	"github.com/mansukim1125/run-configurations/internal/domain/execution"
	"github.com/mansukim1125/run-configurations/internal/domain/runconfig"
)

type app struct {
	addr    string
	timeout time.Duration
	out     io.Writer
}

func (a *app) client() *client.Client {
	return client.New(a.addr)
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	addr := os.Getenv("RUNCTL_ADDR")
	if addr == "" {
		addr = client.DefaultAddr
	}

	root := &cobra.Command{
		Use:           "runctl",
		Short:         "Manage run configurations on a running daemon",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.out = cmd.OutOrStdout()
		},
	}
	root.PersistentFlags().StringVar(&a.addr, "addr", addr, "daemon address (RUNCTL_ADDR)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		listCmd(a),
		showCmd(a),
		addCmd(a),
		editCmd(a),
		runCmd(a),
		deleteCmd(a),
		refreshCmd(a),
		terminalsCmd(a),
		outputCmd(a),
		killCmd(a),
	)
	return root
}

func listCmd(a *app) *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List run configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			configs, err := a.client().List(ctx, pattern)
			if err != nil {
				return err
			}
			sessions, err := a.client().Sessions(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOMMAND\tTERMINAL")
			for _, cfg := range configs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.ID, cfg.Name, execution.BuildCommandLine(cfg), sessions[cfg.ID])
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&pattern, "name", "", "glob matched against configuration names")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a run configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			cfg, err := a.client().Get(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg.DTO())
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}

// configFlags holds the form fields shared by add and edit
type configFlags struct {
	name    string
	command string
	args    string
	cwd     string
	env     []string
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.command, "command", "", "executable or shell command")
	cmd.Flags().StringVar(&f.args, "args", "", "arguments appended to the command")
	cmd.Flags().StringVar(&f.cwd, "cwd", "", "working directory (default ${workspaceFolder})")
	cmd.Flags().StringArrayVar(&f.env, "env", nil, "environment variable KEY=VALUE (repeatable)")
}

// apply overlays the flags the user set onto dto
func (f *configFlags) apply(cmd *cobra.Command, dto *runconfig.DTO) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		dto.Name = f.name
	}
	if flags.Changed("command") {
		dto.Command = f.command
	}
	if flags.Changed("args") {
		dto.Args = f.args
	}
	if flags.Changed("cwd") {
		dto.Cwd = f.cwd
	}
	if flags.Changed("env") {
		env, err := parseEnv(f.env)
		if err != nil {
			return err
		}
		dto.Env = env
	}
	return nil
}

func addCmd(a *app) *cobra.Command {
	f := &configFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a run configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var dto runconfig.DTO
			if err := f.apply(cmd, &dto); err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			cfg, err := a.client().Create(ctx, dto)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, cfg.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	f := &configFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a run configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			c := a.client()
			current, err := c.Get(ctx, args[0])
			if err != nil {
				return err
			}
			dto := current.DTO()
			if err := f.apply(cmd, &dto); err != nil {
				return err
			}

			if _, err := c.Update(ctx, args[0], dto); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "updated %s\n", args[0])
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func runCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Run a configuration in its terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			terminalID, err := a.client().Run(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, terminalID)
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a run configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			err := a.client().Delete(ctx, args[0], yes)
			var apiErr *client.APIError
			if errors.Is(err, client.ErrConfirmationRequired) && errors.As(err, &apiErr) {
				return fmt.Errorf("%s (pass --yes to confirm)", apiErr.Prompt)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

func refreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Tell connected views to reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			return a.client().Refresh(ctx)
		},
	}
}

func terminalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "terminals",
		Short: "List terminals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			terminals, err := a.client().Terminals(ctx)
			if err != nil {
				return err
			}
			sort.Slice(terminals, func(i, j int) bool {
				return terminals[i].StartedAt.Before(terminals[j].StartedAt)
			})

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCWD\tSTATE")
			for _, t := range terminals {
				state := "exited"
				if t.Active {
					state = "running"
				}
				if t.Focused {
					state += ",focused"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.WorkingDir, state)
			}
			return w.Flush()
		},
	}
}

func outputCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "output <terminal-id>",
		Short: "Print and drain a terminal's buffered output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			data, err := a.client().Output(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}

func killCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kill <terminal-id>",
		Short: "Terminate a terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			return a.client().Kill(ctx, args[0])
		},
	}
}

// parseEnv turns KEY=VALUE pairs into a map. An empty list clears the
// environment.
func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q, want KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}
