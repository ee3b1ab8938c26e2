package main

import (
	"io"
	"strings"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/handlers"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "permission-manager",
		Short: "Record application permission requests and the decisions made for them",
		Long: `permission-manager keeps one decision per application (Allow Once, Always or Block)
so repeated permission requests can be answered without asking again.
New requests are always stored as Block until a decision is made.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (default: config.env in the user config directory)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Directory holding the SQLite database")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		requestCmd(a),
		listCmd(a),
		getCmd(a),
		setCmd(a),
	)

	return root
}

func (a *app) useColor() bool {
	return !a.noColor && !color.NoColor
}

func requestCmd(a *app) *cobra.Command {
	var (
		application string
		permissions []string
	)

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Submit a permission request for an application",
		Example: `  permission-manager request --app Calculator --permissions camera,microphone
  permission-manager request -a Calculator -p camera -p microphone`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHandler(func(h *handlers.PermissionHandler) error {
				return h.Request(cmd.Context(), application, permissions)
			})
		},
	}

	cmd.Flags().StringVarP(&application, "app", "a", "", "Application name")
	cmd.Flags().StringSliceVarP(&permissions, "permissions", "p", nil, "Comma-separated permissions requested")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("permissions")

	return cmd
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every application and its permission state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHandler(func(h *handlers.PermissionHandler) error {
				return h.List(cmd.Context())
			})
		},
	}
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <app>",
		Short: "Show the permission state of one application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHandler(func(h *handlers.PermissionHandler) error {
				return h.Get(cmd.Context(), args[0])
			})
		},
	}
}

func setCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <app> <state>",
		Short: "Change the permission state of an application",
		Long: "Change the permission state of an application. State is one of: " +
			strings.Join(entities.DecisionLabels(), ", ") + " (exact spelling).",
		Example: `  permission-manager set Calculator Always
  permission-manager set Calculator "Allow Once"`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return entities.DecisionLabels(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHandler(func(h *handlers.PermissionHandler) error {
				return h.Set(cmd.Context(), args[0], args[1])
			})
		},
	}
}
