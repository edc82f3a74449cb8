// Package domain holds the shared types, collaborator interfaces and the
// failure taxonomy of the messaging engine.
//
// Nothing here does I/O. Fixed-size array types are used for key material
// to avoid accidental reallocation; services accept interfaces declared in
// this package and are wired together in internal/app.
package domain
