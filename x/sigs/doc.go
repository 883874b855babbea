/*
Package sigs verifies the ed25519 signatures of a transaction and keeps one
sequence counter per public key, so that a signed transaction cannot be
replayed.

Every valid signature grants the condition sigs/ed25519/<pubkey hash>. Its
address identifies a vault owner.
*/
package sigs
