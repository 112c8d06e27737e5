// Package core defines the fundamental types and errors for Memoria.
package core

import "errors"

// Core errors that can occur across the system
var (
	// Transcript errors
	ErrFormatUnrecognized  = errors.New("transcript format not recognized")
	ErrPersonNotIdentified = errors.New("target person not identified in transcript")

	// Storage errors
	ErrPersonNotFound   = errors.New("person not found")
	ErrMemoryNotFound   = errors.New("memory not found")
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrMigrationFailed  = errors.New("migration failed")

	// Enrichment errors
	ErrLLMUnavailable  = errors.New("LLM service unavailable")
	ErrEmbeddingFailed = errors.New("failed to generate embedding")
)
