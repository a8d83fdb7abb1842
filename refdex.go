// Package refdex answers natural language questions about hierarchically
// structured API reference documentation (modules, classes, members,
// definitions). It builds a structure-preserving chunk index backed by a
// vector store and retrieves with hypothetical document/question expansion
// before generating a cited answer.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, qdrant/, gemini/).
package refdex
