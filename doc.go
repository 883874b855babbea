/*
Package quorum defines the interfaces shared by every extension of the
multi-owner vault: storage, messages and transactions, handlers, conditions
and addresses, and the helpers used to carry request scoped values (block
time, height, logger) through a context.

The vault state machine itself lives in x/vault. Look into this package to
get an overview of the building blocks the extensions are woven from.
*/
package quorum
