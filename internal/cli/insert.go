package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/sqlite-kd/kdtree"
	"github.com/viant/sqlite-kd/vector"
)

func newInsertCommand(o *rootOptions) *cobra.Command {
	var (
		id     int64
		coords string
	)
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Store a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := vector.ParseCoords(coords)
			if err != nil {
				return err
			}
			db, store, err := o.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := store.AddPoints(cmd.Context(), []kdtree.Point{kdtree.NewPoint(id, values...)}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d\n", id)
			return err
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "point id")
	cmd.Flags().StringVar(&coords, "coords", "", "coordinates, e.g. 1.5,2 or [1.5,2]")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("coords")
	return cmd
}
