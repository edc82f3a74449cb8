// Package keystore manages the local key-agreement pair over an
// encrypted-at-rest storage backend.
//
// Generating a replacement pair is explicit and destructive; the lazy
// bootstrap when no pair exists yet is the single implicit generation.
package keystore
