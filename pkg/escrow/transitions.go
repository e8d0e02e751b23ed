package escrow

import "github.com/chris/escrow-marketplace/pkg/models"

// Event is something that can move an escrow between statuses.
type Event string

const (
	EventAccept          Event = "accept"
	EventFund            Event = "fund"
	EventSubmitDelivery  Event = "submit_delivery"
	EventConfirmDelivery Event = "confirm_delivery"
	EventAutoRelease     Event = "auto_release"
	EventPayout          Event = "payout"
	EventCancel          Event = "cancel"
	EventRaiseDispute    Event = "raise_dispute"
	EventResolveDispute  Event = "resolve_dispute"
)

// AllEvents lists every event.
var AllEvents = []Event{
	EventAccept, EventFund, EventSubmitDelivery, EventConfirmDelivery, EventAutoRelease,
	EventPayout, EventCancel, EventRaiseDispute, EventResolveDispute,
}

type targets map[Event][]models.EscrowStatus

// transitionsFrom is the transition table. The switch has no default branch
// for known statuses so a new status must be added here explicitly.
func transitionsFrom(s models.EscrowStatus) targets {
	switch s {
	case models.StatusPending:
		return targets{
			EventAccept: {models.StatusAccepted},
			EventFund:   {models.StatusFunded},
			EventCancel: {models.StatusCancelled},
		}
	case models.StatusAccepted:
		return targets{
			EventFund:   {models.StatusFunded},
			EventCancel: {models.StatusCancelled},
		}
	case models.StatusFunded:
		return targets{
			EventSubmitDelivery: {models.StatusDelivered},
			EventCancel:         {models.StatusCancelled},
			EventRaiseDispute:   {models.StatusDisputed},
		}
	case models.StatusDelivered:
		return targets{
			EventConfirmDelivery: {models.StatusCompleted},
			EventAutoRelease:     {models.StatusCompleted},
			EventRaiseDispute:    {models.StatusDisputed},
		}
	case models.StatusCompleted:
		return targets{
			EventPayout: {models.StatusPaidOut},
		}
	case models.StatusDisputed:
		return targets{
			EventResolveDispute: {models.StatusCompleted, models.StatusCancelled},
		}
	case models.StatusPaidOut, models.StatusCancelled:
		return nil
	}
	return nil
}

// Targets returns the statuses event may lead to from s.
func Targets(s models.EscrowStatus, event Event) []models.EscrowStatus {
	return transitionsFrom(s)[event]
}

// CanTransition reports whether the table allows from -event-> to.
func CanTransition(from models.EscrowStatus, event Event, to models.EscrowStatus) bool {
	for _, t := range Targets(from, event) {
		if t == to {
			return true
		}
	}
	return false
}

// AvailableEvents returns the events accepted in status s, in AllEvents order.
func AvailableEvents(s models.EscrowStatus) []Event {
	table := transitionsFrom(s)
	var out []Event
	for _, ev := range AllEvents {
		if _, ok := table[ev]; ok {
			out = append(out, ev)
		}
	}
	return out
}

// nominalTarget is the status reported in errors when the event is not
// allowed from the current status.
func nominalTarget(event Event) models.EscrowStatus {
	switch event {
	case EventAccept:
		return models.StatusAccepted
	case EventFund:
		return models.StatusFunded
	case EventSubmitDelivery:
		return models.StatusDelivered
	case EventConfirmDelivery, EventAutoRelease, EventResolveDispute:
		return models.StatusCompleted
	case EventPayout:
		return models.StatusPaidOut
	case EventCancel:
		return models.StatusCancelled
	case EventRaiseDispute:
		return models.StatusDisputed
	}
	return ""
}
