/*
Package observability provides Prometheus instrumentation for story execution.

It translates lifecycle events (batch begin/end, command application, intent
resolution) into counters and histograms, wired in through
domain.LifecycleHooks so the session core stays free of metrics concerns.
*/
package observability
