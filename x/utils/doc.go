/*
Package utils contains the decorators shared by every handler of the vault
application: panic recovery, logging, action tagging and savepoints.
*/
package utils
