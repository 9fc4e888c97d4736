package state

import (
	"errors"
	"testing"
	"time"

	"shareit/pkg/model"
)

func boolPtr(b bool) *bool { return &b }

var (
	now   = time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	hour  = time.Hour
	start = now.Add(-hour)
	end   = now.Add(hour)
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    State
		wantErr bool
	}{
		{input: "", want: All},
		{input: "all", want: All},
		{input: "Waiting", want: Waiting},
		{input: "REJECTED", want: Rejected},
		{input: "past", want: Past},
		{input: "current", want: Current},
		{input: " future ", want: Future},
		{input: "approved", wantErr: true},
		{input: "unsupported_status", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownState) {
					t.Fatalf("Parse(%q) error = %v, want ErrUnknownState", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_ErrorMessageIsUpperCased(t *testing.T) {
	_, err := Parse("bogus")
	if err == nil || err.Error() != "unknown state: BOGUS" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApproval(t *testing.T) {
	if Approval(nil) != Waiting {
		t.Error("nil approval must be WAITING")
	}
	if Approval(boolPtr(true)) != Approved {
		t.Error("true approval must be APPROVED")
	}
	if Approval(boolPtr(false)) != Rejected {
		t.Error("false approval must be REJECTED")
	}
}

func TestTemporal(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want State
	}{
		{name: "before start", at: start.Add(-time.Nanosecond), want: Future},
		{name: "at start", at: start, want: Current},
		{name: "inside", at: now, want: Current},
		{name: "at end", at: end, want: Current},
		{name: "after end", at: end.Add(time.Nanosecond), want: Past},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Temporal(start, end, tt.at); got != tt.want {
				t.Errorf("Temporal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	b := &model.Booking{StartTime: start, EndTime: end, Approved: boolPtr(true)}

	first := Classify(b, now)
	second := Classify(b, now)
	if first != second {
		t.Errorf("Classify() not deterministic: %v vs %v", first, second)
	}
	if first.Approval != Approved || first.Temporal != Current {
		t.Errorf("Classify() = %+v", first)
	}
}

func TestMatches(t *testing.T) {
	pastApproved := &model.Booking{StartTime: now.Add(-3 * hour), EndTime: now.Add(-2 * hour), Approved: boolPtr(true)}
	pastWaiting := &model.Booking{StartTime: now.Add(-3 * hour), EndTime: now.Add(-2 * hour)}
	currentRejected := &model.Booking{StartTime: start, EndTime: end, Approved: boolPtr(false)}
	futureWaiting := &model.Booking{StartTime: now.Add(2 * hour), EndTime: now.Add(3 * hour)}

	tests := []struct {
		filter  State
		booking *model.Booking
		want    bool
	}{
		{All, pastWaiting, true},
		{Waiting, pastWaiting, true},
		{Waiting, futureWaiting, true},
		{Waiting, pastApproved, false},
		{Rejected, currentRejected, true},
		{Rejected, futureWaiting, false},
		{Past, pastApproved, true},
		{Past, pastWaiting, false},
		{Current, currentRejected, true},
		{Current, futureWaiting, false},
		{Future, futureWaiting, true},
		{Future, pastApproved, false},
		{Approved, pastApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			if got := Matches(tt.filter, tt.booking, now); got != tt.want {
				t.Errorf("Matches(%s) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}
