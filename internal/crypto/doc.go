// Package crypto exposes the primitives of the messaging engine.
//
// Contents
//
//   - X25519 key generation and shared-secret derivation (GenerateKeyPair,
//     SharedSecret); the DH output is stretched through HKDF-SHA256 before
//     use as an AEAD key
//   - ChaCha20-Poly1305 message sealing and opening (Encrypt, Decrypt) with
//     a fresh 96-bit nonce per call
//   - Public-key parsing for both accepted wire encodings (ParsePublicKey)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Engine, which binds the primitives to the local key pair
//
// # Notes
//
// All functions operate on fixed-size array types defined in
// internal/domain. Derived secrets are wiped after use; callers should
// treat any key material they hold as sensitive.
package crypto
