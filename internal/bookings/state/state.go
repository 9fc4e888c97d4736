// Package state classifies bookings by approval and by their position in
// time relative to a reference instant. States are never stored; they are
// recomputed from (approved, start, end, now) whenever needed.
package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/pkg/model"
)

type State string

const (
	All      State = "ALL"
	Waiting  State = "WAITING"
	Approved State = "APPROVED"
	Rejected State = "REJECTED"
	Past     State = "PAST"
	Current  State = "CURRENT"
	Future   State = "FUTURE"
)

var ErrUnknownState = errors.New("unknown state")

// Filters lists the states accepted by Parse, ALL included.
var Filters = []State{All, Waiting, Rejected, Past, Current, Future}

// Parse reads a query filter case-insensitively. An empty value means ALL.
// APPROVED is a classification, not a filter, and is rejected.
func Parse(s string) (State, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "" {
		return All, nil
	}
	for _, f := range Filters {
		if State(upper) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownState, upper)
}

// Approval maps the tri-state approval flag: nil is WAITING.
func Approval(approved *bool) State {
	switch {
	case approved == nil:
		return Waiting
	case *approved:
		return Approved
	default:
		return Rejected
	}
}

// Temporal places [start, end] relative to now. Both bounds count as CURRENT.
func Temporal(start, end, now time.Time) State {
	switch {
	case now.Before(start):
		return Future
	case now.After(end):
		return Past
	default:
		return Current
	}
}

type Classification struct {
	Approval State
	Temporal State
}

func Classify(b *model.Booking, now time.Time) Classification {
	return Classification{
		Approval: Approval(b.Approved),
		Temporal: Temporal(b.StartTime, b.EndTime, now),
	}
}

// Matches reports whether b belongs in the result of a filter query. PAST
// only returns approved bookings; CURRENT and FUTURE ignore approval.
func Matches(filter State, b *model.Booking, now time.Time) bool {
	switch filter {
	case All:
		return true
	case Waiting:
		return b.Approved == nil
	case Rejected:
		return b.Approved != nil && !*b.Approved
	case Past:
		return b.Approved != nil && *b.Approved && Temporal(b.StartTime, b.EndTime, now) == Past
	case Current:
		return Temporal(b.StartTime, b.EndTime, now) == Current
	case Future:
		return Temporal(b.StartTime, b.EndTime, now) == Future
	default:
		return false
	}
}
