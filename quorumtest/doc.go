/*
Package quorumtest provides mocks and helpers shared by the tests of all
quorum packages. Nothing in here should be used by production code.
*/
package quorumtest
