/*
Package domain contains the core domain models for the Storyloom engine.

It defines the fundamental entities of story orchestration: Stories, Mods,
Intents, the StoryCommand variants that mutate a story, and the ExecuteResult
reported back to clients. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Story: A durable, named collection of running mods and their shared state.
  - Mod: A running module instance inside a story, addressed by identifier.
  - Intent: A description of desired module behavior, resolved to candidates.
  - Command: A tagged variant (AddMod, RemoveMod, SendModCommand, ...) that
    mutates a story when executed as part of a batch.
  - ExecuteResult: The aggregated outcome of executing one command batch.
*/
package domain
