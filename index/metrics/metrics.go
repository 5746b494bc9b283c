package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/sqlite-kd/index"
)

const namespace = "kd"

var (
	queries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "index",
		Name:      "queries_total",
		Help:      "Number of radius queries.",
	}, []string{"index"})

	queryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "index",
		Name:      "query_errors_total",
		Help:      "Number of radius queries rejected with an error.",
	}, []string{"index"})

	queryResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "index",
		Name:      "query_results",
		Help:      "Number of points returned per radius query.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"index"})

	points = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "index",
		Name:      "points",
		Help:      "Number of indexed points.",
	}, []string{"index"})
)

// Register adds the index collectors to reg. Registering twice is not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{queries, queryErrors, queryResults, points} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// Index records metrics for every call to the wrapped index.
type Index struct {
	index.Index
	name string
}

// Wrap instruments inner under the given index name.
func Wrap(inner index.Index, name string) *Index {
	w := &Index{Index: inner, name: name}
	points.WithLabelValues(name).Set(float64(inner.Len()))
	return w
}

// Build delegates to the wrapped index and updates the points gauge.
func (i *Index) Build(ids []int64, vecs [][]float32) error {
	err := i.Index.Build(ids, vecs)
	points.WithLabelValues(i.name).Set(float64(i.Index.Len()))
	return err
}

// Within delegates to the wrapped index and records the outcome.
func (i *Index) Within(query []float32, radius float32) ([]int64, error) {
	queries.WithLabelValues(i.name).Inc()
	ids, err := i.Index.Within(query, radius)
	if err != nil {
		queryErrors.WithLabelValues(i.name).Inc()
		return nil, err
	}
	queryResults.WithLabelValues(i.name).Observe(float64(len(ids)))
	return ids, nil
}

// Name returns the label the index reports under.
func (i *Index) Name() string { return i.name }

var _ index.Index = (*Index)(nil)
