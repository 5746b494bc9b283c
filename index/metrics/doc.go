// Package metrics wraps an index.Index with Prometheus instrumentation:
// query and error counters, a histogram of result sizes and a gauge of
// indexed points, all labelled by index name.
package metrics
