package checkin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/cycle"
)

// ErrUnknownSlotType is returned when a stored slot tag matches none of the
// known naming schemes.
var ErrUnknownSlotType = errors.New("unknown slot type")

// SlotKind separates the weekly intention from the rating check-ins.
type SlotKind int

const (
	KindIntention SlotKind = iota + 1
	KindCheckIn
)

// SlotType identifies which expected submission a reflection fills.
// Day is only meaningful for KindCheckIn.
type SlotType struct {
	Kind SlotKind
	Day  cycle.Weekday
}

// Intention is the weekly intention slot.
func Intention() SlotType {
	return SlotType{Kind: KindIntention}
}

// CheckIn is the rating slot scheduled on day.
func CheckIn(day cycle.Weekday) SlotType {
	return SlotType{Kind: KindCheckIn, Day: day}
}

// IsIntention reports whether s is the weekly intention.
func (s SlotType) IsIntention() bool { return s.Kind == KindIntention }

// IsCheckIn reports whether s is a rating slot.
func (s SlotType) IsCheckIn() bool { return s.Kind == KindCheckIn && s.Day.Valid() }

// String renders the canonical tag: "intention" or "checkin:wed".
func (s SlotType) String() string {
	switch s.Kind {
	case KindIntention:
		return "intention"
	case KindCheckIn:
		return "checkin:" + s.Day.String()
	default:
		return "unknown"
	}
}

// ParseSlotType maps a stored tag onto a SlotType. Besides the canonical form
// it accepts the per-day scheme (CHECK_IN_WED, CHECKIN_WEDNESDAY) and the
// lettered scheme (RATING_A, RATING_B, ...) whose letters index into cad.
func ParseSlotType(tag string, cad cycle.Cadence) (SlotType, error) {
	norm := strings.ToLower(strings.TrimSpace(tag))
	switch norm {
	case "intention", "weekly_intention", "baseline":
		return Intention(), nil
	}

	for _, prefix := range []string{"checkin:", "check_in_", "checkin_"} {
		if rest, ok := strings.CutPrefix(norm, prefix); ok {
			if day, ok := cycle.ParseWeekday(rest); ok {
				return CheckIn(day), nil
			}
			return SlotType{}, fmt.Errorf("%w: %q", ErrUnknownSlotType, tag)
		}
	}

	if rest, ok := strings.CutPrefix(norm, "rating_"); ok && len(rest) == 1 {
		idx := int(rest[0] - 'a')
		if idx >= 0 && idx < len(cad) {
			return CheckIn(cad[idx]), nil
		}
		return SlotType{}, fmt.Errorf("%w: %q has no matching day in cadence %s", ErrUnknownSlotType, tag, cad)
	}

	return SlotType{}, fmt.Errorf("%w: %q", ErrUnknownSlotType, tag)
}

// SlotState is the completion state of one scheduled check-in.
type SlotState string

const (
	StateUpcoming  SlotState = "upcoming"
	StateOpen      SlotState = "open"
	StateCompleted SlotState = "completed"
	StateMissed    SlotState = "missed"
)

// Pending reports whether a slot can still be submitted.
func (s SlotState) Pending() bool {
	return s == StateUpcoming || s == StateOpen
}
