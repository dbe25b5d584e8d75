/*
Package ports defines the driven ports (interfaces) for the Storyloom engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various storage backends, module resolvers,
and command sinks.

# Key Interfaces

  - StoryStore: Responsible for durably persisting whole-story records.
  - ModResolver: Maps an intent to zero or more runnable module candidates.
  - ModCommandDispatcher: Delivers SendModCommand payloads to running mods.
  - DistributedLocker: Provides distributed locking for multi-replica setups.
*/
package ports
