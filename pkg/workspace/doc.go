/*
Package workspace manages named live networks and their persistence.

A Manager keeps one in-memory network per name, builds it from a
DefinitionStore on first use and writes its topology back on Save or Edit.
Every operation on a name runs under that name's lock: a reference-counted
local mutex, plus a DistributedLocker when several replicas share a store.
*/
package workspace
