// Package api implements the HTTP handlers of the exam simulator. Handlers
// decode and validate requests, call the services and translate service
// errors into status codes and client-safe messages.
package api
