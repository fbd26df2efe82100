package types

type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventStrategyCreated     EventType = "StrategyCreated"
	EventStrategyUpdated     EventType = "StrategyUpdated"
	EventStrategyDeactivated EventType = "StrategyDeactivated"
)

const (
	EventDelegationCreated EventType = "DelegationCreated"
	EventDelegationRevoked EventType = "DelegationRevoked"
)

const (
	EventRebalanceExecuted EventType = "RebalanceExecuted"
	EventRebalanceFailed   EventType = "RebalanceFailed"
	EventPriceFeedUpdated  EventType = "PriceFeedUpdated"
	EventSwapExecuted      EventType = "SwapExecuted"
)

// DefaultEventPriority is assigned to event types without an explicit entry
// in the priority table.
const DefaultEventPriority uint8 = 10

// eventPriorities maps event types to their queue priority.
// Lower number = served first. Rebalance outcomes trigger immediate bot
// action, price updates drive drift calculation, the rest is bookkeeping.
var eventPriorities = map[EventType]uint8{
	EventRebalanceExecuted: 1,
	EventRebalanceFailed:   1,

	EventPriceFeedUpdated: 2,

	EventDelegationCreated: 3,
	EventDelegationRevoked: 3,
	EventStrategyCreated:   3,

	EventStrategyUpdated:     5,
	EventStrategyDeactivated: 5,
	EventSwapExecuted:        5,
}

// EventPriority returns the queue priority for the given event type,
// falling back to DefaultEventPriority for unrecognized types.
func EventPriority(eventType EventType) uint8 {
	if p, ok := eventPriorities[eventType]; ok {
		return p
	}
	return DefaultEventPriority
}
