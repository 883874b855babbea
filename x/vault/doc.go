/*
Package vault implements a shared account controlled by a set of owners.

A vault is created with an ordered list of distinct owners and a threshold.
Any owner can propose a batch of instructions. Owners approve the proposal
and once at least threshold of them did, anyone can execute it. Execution
runs every instruction through an InstructionRouter with the vault authority
condition attached to the context and either all of them succeed or none of
the changes is kept.

The vault changes its own owners or threshold only through the same process:
ReplaceOwnersMsg and ChangeThresholdMsg are registered on the instruction
router and require the vault authority. Replacing the owners bumps the owner
set version, which makes every proposal created before permanently stale.
*/
package vault
