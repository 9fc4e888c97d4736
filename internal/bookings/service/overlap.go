package service

import (
	"context"
	"time"

	"shareit/pkg/model"
)

// isFree reports whether [start, end] fits between the active bookings of an
// item. active must be sorted by start ascending and hold only bookings that
// are approved or pending and end after now.
//
// The scan keeps a left boundary, initially now, that is pushed to the end of
// every booking that starts before the candidate ends. The candidate fits
// when it starts at or after the left boundary once all such bookings have
// been consumed. Sharing an endpoint with a neighbour is allowed.
func isFree(active []*model.Booking, start, end, now time.Time) bool {
	left := now
	for _, b := range active {
		if !b.StartTime.Before(end) {
			break
		}
		if b.EndTime.After(left) {
			left = b.EndTime
		}
	}
	return !left.After(start)
}

func (s *bookingService) isFree(ctx context.Context, itemID string, start, end time.Time) (bool, error) {
	now := s.now()
	active, err := s.repo.FindActiveByItem(ctx, itemID, now)
	if err != nil {
		return false, err
	}
	return isFree(active, start, end, now), nil
}
