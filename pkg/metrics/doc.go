// Package metrics provides Prometheus instrumentation for chronoflow components.
//
// # Overview
//
// One Registry holds every collector. Worker pools record:
//   - tasks scheduled, executed, completed, failed, deferred, discarded and retried
//   - execution duration and dispatch lateness (start time minus deadline)
//   - pool size, active workers and queued tasks
//   - completed rendezvous
//
// Schedulers record their registered entries and occurrence runs.
//
// All pool metrics carry a pool_name label, scheduler metrics a
// scheduler_name label.
//
// # Quick Start
//
// Metrics are disabled unless a component is configured with them:
//
//	pool, err := workerpool.NewWithConfig(workerpool.Config{
//		Name:    "matrix",
//		Metrics: metrics.Config{Enabled: true},
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Custom Registries
//
// A custom registerer keeps collectors out of the global registry, which
// tests rely on:
//
//	reg := prometheus.NewRegistry()
//	cfg := metrics.Config{Enabled: true, Registry: reg, Namespace: "myapp"}
//
// With the default registerer every component shares DefaultRegistry, so
// collectors are registered only once per process.
package metrics
