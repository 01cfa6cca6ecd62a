// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): corpus loading, lexical indexing, model
// providers, and query record storage.
package driven
