// Package main runs the in-memory HTTP chat server used by veilchat during
// development and tests. It keeps user profiles and per-session message
// queues in memory.
//
// HTTP API
//
//	POST /users
//	    Store a user profile (id, display name, base64 public key).
//
//	GET /users/{id}
//	    Return the profile for {id}.
//
//	POST /messages
//	    Store a wire message into its session queue. Missing id and
//	    timestamp are filled in; the echoed message carries status "sent".
//
//	GET /sessions/{session}/messages
//	    Return every stored wire message for {session}.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Responses are JSON. Non-2xx statuses carry a short error message.
//   - The default listen address is :8080.
//
// The server never sees plaintext or private keys; it stores ciphertext and
// public profiles only.
package main
