package models

import "time"

// Step identifies the user's position in the conversational funnel.
type Step string

const (
	StepIdle           Step = "IDLE"
	StepGreeting       Step = "GREETING"
	StepAskBudget      Step = "ASK_BUDGET"
	StepAskType        Step = "ASK_TYPE"
	StepAskBrand       Step = "ASK_BRAND"
	StepViewCars       Step = "VIEW_CARS"
	StepDoneViewing    Step = "DONE_VIEWING"
	StepSelectDate     Step = "SELECT_DATE"
	StepSelectTimeSlot Step = "SELECT_TIME_SLOT"
	StepAskName        Step = "ASK_NAME"
	StepAskPhone       Step = "ASK_PHONE"
	StepAskLicense     Step = "ASK_LICENSE"
	StepConfirmDetails Step = "CONFIRM_DETAILS"
	StepBooked         Step = "BOOKED"
	StepCanceled       Step = "CANCELED"
)

// Valid reports whether s is a member of the step enum.
func (s Step) Valid() bool {
	switch s {
	case StepIdle, StepGreeting, StepAskBudget, StepAskType, StepAskBrand,
		StepViewCars, StepDoneViewing, StepSelectDate, StepSelectTimeSlot,
		StepAskName, StepAskPhone, StepAskLicense, StepConfirmDetails,
		StepBooked, StepCanceled:
		return true
	}
	return false
}

// Session holds per-user conversational state across webhook deliveries.
// Fields outside the current step's requirement set may be stale from a
// prior funnel run and must not be consulted out of order.
type Session struct {
	UserID         string                `json:"userId"`
	Step           Step                  `json:"step"`
	Budget         string                `json:"budget,omitempty"`
	CarType        string                `json:"carType,omitempty"`
	Brand          string                `json:"brand,omitempty"`
	OfferedTypes   []string              `json:"offeredTypes,omitempty"`
	OfferedBrands  []string              `json:"offeredBrands,omitempty"`
	Offset         int64                 `json:"offset"`
	ShownCars      map[string]CarListing `json:"shownCars,omitempty"`
	SelectedCarRef string                `json:"selectedCarRef,omitempty"`
	DateChoice     string                `json:"dateChoice,omitempty"`
	TimeSlot       string                `json:"timeSlot,omitempty"`
	ScheduledAt    time.Time             `json:"scheduledAt,omitempty"`
	Name           string                `json:"name,omitempty"`
	Phone          string                `json:"phone,omitempty"`
	HasLicense     *bool                 `json:"hasLicense,omitempty"`
}

// Reset clears the session back to a fresh IDLE lifecycle. Used on the
// terminal steps and on an explicit restart greeting, so no field from a
// prior funnel run can leak into a new booking.
func (s *Session) Reset() {
	*s = Session{UserID: s.UserID, Step: StepIdle}
}

// SelectedCar resolves the listing behind the session's selected booking
// reference. References are minted per listing shown and resolved through
// this lookup, never reconstructed from the selection id text.
func (s *Session) SelectedCar() (CarListing, bool) {
	car, ok := s.ShownCars[s.SelectedCarRef]
	return car, ok
}
