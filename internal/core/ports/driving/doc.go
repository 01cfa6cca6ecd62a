// Package driving provides interfaces implemented by core services
// (primary/inbound ports), consumed by the HTTP and CLI adapters.
package driving
