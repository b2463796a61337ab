// Package events decouples services from the background work their actions
// trigger. A service emits an Event; handlers subscribed to its type react,
// typically by enqueuing a task. Handlers never see each other's errors.
package events
