/*
Package x contains the extensions of the vault application.

Extensions implement common functionality (Handler, Decorator,
Authenticator) and are combined together to construct an application.
The authorization vault lives in x/vault, transaction signatures are
verified by x/sigs and x/utils holds the decorators shared by all of them.

Message types are prefixed by the package when used, so name them after
the action only where that reads well, eg. `vault.ApproveMsg`.
*/
package x
