package cli

import (
	"github.com/spf13/cobra"

	"userdir/pkg/config"
)

type options struct {
	cfg      *config.AppConfig
	logLevel string
	driver   string
	todoKey  string
}

func NewRootCmd(version, buildDate string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "userdir",
		Short:         "User directory service and todo store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.load(cmd)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.driver, "kv-driver", "", "Key-value store: memory, sqlite, postgres or redis")
	root.PersistentFlags().StringVar(&opts.todoKey, "todo-key", "", "Key the todo list is stored under")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newServeCmd(opts, version))
	root.AddCommand(newTodosCmd(opts))

	return root
}

// load reads the environment and lets explicitly set flags win.
func (o *options) load(cmd *cobra.Command) {
	o.cfg = config.Load()

	flags := cmd.Flags()

	if flags.Changed("log-level") {
		o.cfg.LogLevel = o.logLevel
	}

	if flags.Changed("kv-driver") {
		o.cfg.Store.Driver = o.driver
	}

	if flags.Changed("todo-key") {
		o.cfg.TodoKey = o.todoKey
	}
}
