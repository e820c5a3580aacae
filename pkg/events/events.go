package events

import (
	"sync"
	"time"

	"github.com/hueshift/hueshift/pkg/types"
)

// EventType represents the type of deployment event
type EventType string

const (
	EventStageEntered  EventType = "stage.entered"
	EventStageFailed   EventType = "stage.failed"
	EventRollback      EventType = "deploy.rollback"
	EventDeployDone    EventType = "deploy.done"
	EventReaperWarning EventType = "reaper.warning"
)

// Event represents one step in a deployment's life
type Event struct {
	Type      EventType
	Timestamp time.Time
	DeployID  string
	Stage     types.Stage
	Message   string
}

// Subscriber is a channel that receives events
type Subscriber chan *Event

// Broker distributes deployment events to subscribers. The CLI subscribes
// to render the human-readable progress summary.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			// Deliver anything still queued, then close the
			// subscriber channels so consumers can range to the end.
			for {
				select {
				case event := <-b.eventCh:
					b.broadcast(event)
				default:
					b.closeSubscribers()
					return
				}
			}
		}
	}
}

func (b *Broker) closeSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subscribers {
		delete(b.subscribers, sub)
		close(sub)
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
