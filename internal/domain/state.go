package domain

// Action is a lifecycle trigger applied to a booking
type Action string

const (
	ActionAccept          Action = "accept"
	ActionDecline         Action = "decline"
	ActionExpire          Action = "expire"
	ActionStart           Action = "start"
	ActionCancel          Action = "cancel"
	ActionComplete        Action = "complete"
	ActionDispute         Action = "dispute"
	ActionResolveComplete Action = "resolve_complete"
	ActionResolveCancel   Action = "resolve_cancel"
)

// AllActions lists every action the state table knows
var AllActions = []Action{
	ActionAccept,
	ActionDecline,
	ActionExpire,
	ActionStart,
	ActionCancel,
	ActionComplete,
	ActionDispute,
	ActionResolveComplete,
	ActionResolveCancel,
}

type transitionKey struct {
	from   BookingStatus
	action Action
}

// transitions is the complete lifecycle table; anything absent is illegal
var transitions = map[transitionKey]BookingStatus{
	{StatusPending, ActionAccept}:           StatusConfirmed,
	{StatusPending, ActionDecline}:          StatusCancelled,
	{StatusPending, ActionExpire}:           StatusCancelled,
	{StatusPending, ActionCancel}:           StatusCancelled,
	{StatusConfirmed, ActionStart}:          StatusActive,
	{StatusConfirmed, ActionCancel}:         StatusCancelled,
	{StatusActive, ActionComplete}:          StatusCompleted,
	{StatusActive, ActionDispute}:           StatusDisputed,
	{StatusDisputed, ActionResolveComplete}: StatusCompleted,
	{StatusDisputed, ActionResolveCancel}:   StatusCancelled,
}

// ParseAction validates a raw action value
func ParseAction(s string) (Action, bool) {
	for _, a := range AllActions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Next returns the status reached by applying action to from,
// or a BookingInvalidState error when the pair is not in the table.
func Next(from BookingStatus, action Action) (BookingStatus, error) {
	if to, ok := transitions[transitionKey{from, action}]; ok {
		return to, nil
	}
	return "", NewInvalidState(0, from, action, SourcesOf(action))
}

// SourcesOf returns the statuses from which action is legal
func SourcesOf(action Action) []BookingStatus {
	sources := make([]BookingStatus, 0, 2)
	for _, s := range AllStatuses {
		if _, ok := transitions[transitionKey{s, action}]; ok {
			sources = append(sources, s)
		}
	}
	return sources
}
