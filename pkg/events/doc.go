/*
Package events provides an in-memory event broker for deployment progress.

The events package implements a lightweight event bus broadcasting stage
transitions, rollbacks, and reaper warnings to interested subscribers. The
deployer publishes; the CLI subscribes to render the human-readable
progress summary without the orchestration code knowing about terminals.

# Architecture

	┌──────────────── EVENT BROKER ─────────────────┐
	│                                                 │
	│  Publisher → Event Channel (buffer: 100)       │
	│       ↓                                         │
	│  Broadcast Loop                                 │
	│       ↓                                         │
	│  Subscriber Channels (buffer: 50 each)         │
	│                                                 │
	│  Event Types:                                   │
	│    stage.entered   deployer entered a stage     │
	│    stage.failed    a stage aborted the deploy   │
	│    deploy.rollback rollback was performed       │
	│    deploy.done     terminal outcome             │
	│    reaper.warning  non-fatal reaper problem     │
	└─────────────────────────────────────────────────┘

Publishing never blocks the deployer: a subscriber with a full buffer
misses events rather than stalling the deployment.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	go func() {
		for ev := range sub {
			fmt.Printf("[%s] %s\n", ev.Stage, ev.Message)
		}
	}()
*/
package events
