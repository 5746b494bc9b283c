package cli

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/viant/sqlite-kd/index"
	"github.com/viant/sqlite-kd/index/bruteforce"
	"github.com/viant/sqlite-kd/index/kd"
	"github.com/viant/sqlite-kd/index/metrics"
	"github.com/viant/sqlite-kd/vector"
)

func newNearCommand(o *rootOptions) *cobra.Command {
	var (
		coords      string
		radius      float32
		kind        string
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "near",
		Short: "Print ids of stored points within radius of a query point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := vector.ParseCoords(coords)
			if err != nil {
				return err
			}
			var inner index.Index
			switch kind {
			case "kd":
				inner, err = kd.New(o.cfg.Dim)
			case "brute":
				inner, err = bruteforce.New(o.cfg.Dim)
			default:
				return fmt.Errorf("cli: unknown index %q, want kd or brute", kind)
			}
			if err != nil {
				return err
			}
			db, store, err := o.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			points, err := store.Points(cmd.Context())
			if err != nil {
				return err
			}
			ids := make([]int64, len(points))
			vecs := make([][]float32, len(points))
			for i, p := range points {
				ids[i], vecs[i] = p.ID, p.Coords
			}

			reg := prometheus.NewRegistry()
			if err := metrics.Register(reg); err != nil {
				return err
			}
			idx := metrics.Wrap(inner, o.cfg.Table)
			if err := idx.Build(ids, vecs); err != nil {
				return err
			}
			found, err := idx.Within(query, radius)
			if err != nil {
				return err
			}
			klog.V(2).InfoS("radius query", "index", kind, "points", idx.Len(), "matched", len(found))
			sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
			out := cmd.OutOrStdout()
			for _, id := range found {
				if _, err := fmt.Fprintln(out, id); err != nil {
					return err
				}
			}
			if showMetrics {
				return writeMetrics(out, reg, idx.Name())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&coords, "coords", "", "query coordinates, e.g. 1.5,2 or [1.5,2]")
	cmd.Flags().Float32Var(&radius, "radius", 0, "search radius")
	cmd.Flags().StringVar(&kind, "index", "kd", "index implementation: kd or brute")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print index metrics after the result")
	_ = cmd.MarkFlagRequired("coords")
	_ = cmd.MarkFlagRequired("radius")
	return cmd
}
