// Package http provides the broker-facing HTTP adapters: URL templating for
// topics and the instrumented client used for both consumption and publish.
package http
