package launch

import (
	"strconv"

	"sendor/core/events"
	"sendor/core/types"
)

const (
	// EventTypeLaunchCreated is emitted when a new launch is registered.
	EventTypeLaunchCreated = "launch.created"
	// EventTypeLaunchPurchase is emitted for every successful buy.
	EventTypeLaunchPurchase = "launch.purchased"
	// EventTypeLaunchSale is emitted for every successful sell.
	EventTypeLaunchSale = "launch.sold"
	// EventTypeLaunchTransfer is emitted for every successful transfer.
	EventTypeLaunchTransfer = "launch.transferred"
	// EventTypeLaunchDayAdvanced is emitted whenever a launch enters a new
	// trading cycle, whether by wall clock or by the admin operation.
	EventTypeLaunchDayAdvanced = "launch.day_advanced"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// LaunchCreatedEvent returns the structured payload announcing a new launch.
func LaunchCreatedEvent(id uint64, creator, symbol string, basePrice, slope uint64) *types.Event {
	return &types.Event{
		Type: EventTypeLaunchCreated,
		Attributes: map[string]string{
			"id":        formatID(id),
			"creator":   creator,
			"symbol":    symbol,
			"basePrice": strconv.FormatUint(basePrice, 10),
			"slope":     strconv.FormatUint(slope, 10),
		},
	}
}

// PurchaseEvent returns the structured payload for a buy.
func PurchaseEvent(id uint64, buyer string, qty, cost uint64) *types.Event {
	return &types.Event{
		Type: EventTypeLaunchPurchase,
		Attributes: map[string]string{
			"id":    formatID(id),
			"buyer": buyer,
			"qty":   strconv.FormatUint(qty, 10),
			"cost":  strconv.FormatUint(cost, 10),
		},
	}
}

// SaleEvent returns the structured payload for a sell.
func SaleEvent(id uint64, seller string, qty, payout uint64) *types.Event {
	return &types.Event{
		Type: EventTypeLaunchSale,
		Attributes: map[string]string{
			"id":     formatID(id),
			"seller": seller,
			"qty":    strconv.FormatUint(qty, 10),
			"payout": strconv.FormatUint(payout, 10),
		},
	}
}

// TransferEvent returns the structured payload for a holder-to-holder move.
func TransferEvent(id uint64, from, to string, qty uint64) *types.Event {
	return &types.Event{
		Type: EventTypeLaunchTransfer,
		Attributes: map[string]string{
			"id":   formatID(id),
			"from": from,
			"to":   to,
			"qty":  strconv.FormatUint(qty, 10),
		},
	}
}

// DayAdvancedEvent returns the structured payload for a cycle rollover.
func DayAdvancedEvent(id, tradingDay uint64, window1Start, window2Start int64) *types.Event {
	return &types.Event{
		Type: EventTypeLaunchDayAdvanced,
		Attributes: map[string]string{
			"id":           formatID(id),
			"tradingDay":   strconv.FormatUint(tradingDay, 10),
			"window1Start": strconv.FormatInt(window1Start, 10),
			"window2Start": strconv.FormatInt(window2Start, 10),
		},
	}
}
