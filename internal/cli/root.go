package cli

import (
	"context"
	"database/sql"
	goflag "flag"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/viant/sqlite-kd/engine"
	"github.com/viant/sqlite-kd/vector"
)

type rootOptions struct {
	v          *viper.Viper
	configFile string
	cfg        *Config
}

// NewRootCommand returns the kdtree command with its subcommands.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{v: viper.New()}
	cmd := &cobra.Command{
		Use:           "kdtree",
		Short:         "Store points in SQLite and run radius queries over a k-d tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(o.v, o.configFile)
			if err != nil {
				return err
			}
			o.cfg = cfg
			klog.V(2).InfoS("resolved config", "db", cfg.DB, "table", cfg.Table, "dim", cfg.Dim)
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.String("db", "kd.sqlite", "SQLite database path")
	flags.String("table", "points", "points table name")
	flags.Int("dim", 2, "point dimension")
	flags.StringVar(&o.configFile, "config", "", "optional config file (yaml, json, toml)")

	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	flags.AddGoFlagSet(klogFlags)

	if err := bindConfig(o.v, flags); err != nil {
		panic(err)
	}

	cmd.AddCommand(newInsertCommand(o), newNearCommand(o), newStatsCommand(o))
	return cmd
}

// openStore opens the configured database and points store. The caller
// closes the returned database.
func (o *rootOptions) openStore(ctx context.Context) (*sql.DB, *vector.SQLiteStore, error) {
	db, err := engine.Open(o.cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("cli: open %s: %w", o.cfg.DB, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("cli: open %s: %w", o.cfg.DB, err)
	}
	store, err := vector.NewSQLiteStore(db, o.cfg.Table, o.cfg.Dim)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, store, nil
}
