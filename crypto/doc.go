/*
Package crypto holds the ed25519 keys used to identify vault owners.

A public key is turned into a quorum.Condition of the form
"sigs/ed25519/<key>", and the address of that condition is the identity
stored in a vault owner set.
*/
package crypto
