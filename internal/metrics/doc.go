// Package metrics records build metrics for jbuild runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks. When
// metrics.textfile is configured the CLI swaps in a PrometheusRecorder and
// writes the registry in the node-exporter textfile format after every run:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run the build with rec ...
//	err := metrics.WriteTextfile(path, reg)
//
// TaskObserver adapts a Recorder to the task executor's observer hooks.
package metrics
