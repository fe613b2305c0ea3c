/*
Package observability provides tools for monitoring the processor network.

Metrics exposes Prometheus collectors fed by network lifecycle hooks:
invalidations by level, evaluation passes and their duration, and gauges
for the number of processors and connections.
*/
package observability
