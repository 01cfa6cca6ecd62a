// Package domain contains the core types of the question-answering
// system: documents, answers, query records, and the sentinel errors
// shared between services and adapters. It has no dependencies on
// other packages in this repository.
package domain
