/*
Package observability exposes Prometheus metrics for the launch-kit pipeline.

Metrics are fed from the engine's lifecycle hooks and from decorators around
the Generator and Searcher ports, and are served from their own registry so
that tests and embedders never touch the global one.
*/
package observability
