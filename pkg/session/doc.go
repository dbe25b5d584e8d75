/*
Package session implements the session registry and the per-story batch
executor.

It provides high-level abstractions for handling concurrent access to story
state across many client handles, serializing batches per story name while
letting different stories proceed fully in parallel. An optional distributed
locker extends the guarantee across replicas.
*/
package session
