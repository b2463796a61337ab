// Package task runs background work off the request path. Tasks are persisted
// before they are queued, so work that was pending or in flight when the
// process stopped is recovered on the next start through a Registry that
// rebuilds tasks from their stored payloads.
package task
