package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newStatsCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print size and height of the tree built from stored points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, store, err := o.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			tree, err := store.Tree(cmd.Context())
			if err != nil {
				return err
			}
			stats := tree.Stats()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "size=%d height=%d ideal_height=%d\n", stats.Size, stats.Height, stats.IdealHeight)
			return err
		},
	}
}

// writeMetrics prints counter, gauge and histogram count samples labelled
// with the given index name.
func writeMetrics(w io.Writer, reg prometheus.Gatherer, name string) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			matched := false
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "index" && lp.GetValue() == name {
					matched = true
				}
			}
			if !matched {
				continue
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			if _, err := fmt.Fprintf(w, "%s{index=%q} %g\n", mf.GetName(), name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
