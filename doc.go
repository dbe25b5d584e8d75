/*
Package storyloom is a session/story orchestration engine: it accepts batches
of structured commands that mutate the composition of a story (a named,
durable collection of running modules and their shared state) and applies
them atomically, in order, with no interleaving from concurrent clients.

The engine guarantees ordering, atomicity-per-batch, durability across
restarts, and well-defined error semantics when commands are malformed or
structurally invalid (such as removing the last module in a story). What it
deliberately does not do: render modules, decide how intents map to concrete
packages (that is the injected resolver's job), or speak any particular wire
protocol (HTTP and MCP adapters live under internal/adapters).

# Usage

Construct a Session with a resolver and (optionally) a durable store, obtain
a story control handle, enqueue commands, and execute:

	package main

	import (
		"context"
		"log"

		"github.com/aldaque/storyloom"
		"github.com/aldaque/storyloom/pkg/domain"
	)

	func main() {
		sess, err := storyloom.New(storyloom.WithResolver(myResolver))
		if err != nil {
			log.Fatal(err)
		}

		ctrl, err := sess.ControlStory("morning-news")
		if err != nil {
			log.Fatal(err) // control denied
		}

		ctrl.Enqueue(domain.Command{
			Type: domain.CommandAddMod,
			AddMod: &domain.AddMod{
				ModName: "headlines",
				Intent:  domain.Intent{Action: "com.example.news.headlines"},
			},
		})

		result := ctrl.Execute(context.Background())
		if !result.OK() {
			log.Fatalf("%s: %s", result.Status, result.ErrorMessage)
		}
	}

Batches from concurrent handles targeting the same story are totally ordered:
commands inside one batch never interleave with another batch's. A batch
stops at its first failing command; effects of earlier commands in the batch
remain applied (stop on error, not rollback).
*/
package storyloom
