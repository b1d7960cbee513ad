// Package domain holds the lexcheck vocabulary: documents and their chunks,
// the checklist of required documents per legal process, flagged issues and
// the report an analysis run produces.
//
// Only the standard library may be imported here.
package domain
