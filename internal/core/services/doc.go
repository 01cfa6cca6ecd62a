// Package services contains the application core: the answer service
// with its lazy one-time initialization, the history service over
// persisted query records, and the background dispatcher for long
// questions. Services depend only on domain types and ports.
package services
