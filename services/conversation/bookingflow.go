package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	testdriveRepo "sherpa/database/repository/testdrive"
	"sherpa/models"

	"go.uber.org/zap"
)

// Test-drive scheduling option ids.
const (
	DateToday         = "testdrive_today"
	DateTomorrow      = "testdrive_tomorrow"
	DateLaterThisWeek = "testdrive_later_this_week"
	DateNextWeek      = "testdrive_next_week"

	SlotMorning   = "slot_morning"
	SlotAfternoon = "slot_afternoon"
	SlotEvening   = "slot_evening"

	SelectionConfirm = "confirm_booking"
	SelectionCancel  = "cancel_booking"
	SelectionYes     = "dl_yes"
	SelectionNo      = "dl_no"
)

var dateOptions = []models.Option{
	{ID: DateToday, Title: "Today"},
	{ID: DateTomorrow, Title: "Tomorrow"},
	{ID: DateLaterThisWeek, Title: "Later This Week"},
	{ID: DateNextWeek, Title: "Next Week"},
}

var slotOptions = []models.Option{
	{ID: SlotMorning, Title: "Morning"},
	{ID: SlotAfternoon, Title: "Afternoon"},
	{ID: SlotEvening, Title: "Evening"},
}

// Day offsets from now for each date choice.
var dateOffsets = map[string]int{
	DateToday:         0,
	DateTomorrow:      1,
	DateLaterThisWeek: 3,
	DateNextWeek:      7,
}

// Slot hour of day; minutes and seconds are zeroed.
var slotHours = map[string]int{
	SlotMorning:   9,
	SlotAfternoon: 14,
	SlotEvening:   18,
}

// BookingFlow is the sub-machine covering date, time slot, contact details,
// and the final confirm/cancel decision.
type BookingFlow struct {
	Records testdriveRepo.TestDriveRepository
	Logger  *zap.Logger
	// Now supplies the clock; overridable in tests.
	Now func() time.Time
}

func (f *BookingFlow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// SelectCar records the chosen booking reference and moves to date selection.
// The reference must have been minted for a listing shown in this session.
func (f *BookingFlow) SelectCar(sess *models.Session, ref string) bool {
	if _, ok := sess.ShownCars[ref]; !ok {
		return false
	}
	sess.SelectedCarRef = ref
	sess.Step = models.StepSelectDate
	return true
}

// SelectDate records the date choice and moves to time-slot selection.
func (f *BookingFlow) SelectDate(sess *models.Session, dateID string) bool {
	if _, ok := dateOffsets[dateID]; !ok {
		return false
	}
	sess.DateChoice = dateID
	sess.Step = models.StepSelectTimeSlot
	return true
}

// SelectTimeSlot computes the scheduled timestamp from the stored date
// choice and the chosen slot, then asks for the user's name.
func (f *BookingFlow) SelectTimeSlot(sess *models.Session, slotID string) bool {
	hour, ok := slotHours[slotID]
	if !ok {
		return false
	}
	days := dateOffsets[sess.DateChoice]
	day := f.now().AddDate(0, 0, days)
	sess.ScheduledAt = time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
	sess.TimeSlot = slotID
	sess.Step = models.StepAskName
	return true
}

// ProvideName captures the trimmed free-text name.
func (f *BookingFlow) ProvideName(sess *models.Session, text string) {
	sess.Name = strings.TrimSpace(text)
	sess.Step = models.StepAskPhone
}

// ProvidePhone captures the trimmed free-text phone number.
func (f *BookingFlow) ProvidePhone(sess *models.Session, text string) {
	sess.Phone = strings.TrimSpace(text)
	sess.Step = models.StepAskLicense
}

// ProvideLicense records the yes/no license answer and moves to confirmation.
func (f *BookingFlow) ProvideLicense(sess *models.Session, hasLicense bool) {
	sess.HasLicense = &hasLicense
	sess.Step = models.StepConfirmDetails
}

// Summary renders the confirmation text shown before the confirm/cancel choice.
func (f *BookingFlow) Summary(sess *models.Session) string {
	car, _ := sess.SelectedCar()
	license := "No"
	if sess.HasLicense != nil && *sess.HasLicense {
		license = "Yes"
	}
	return fmt.Sprintf(
		"📝 *Test Drive Summary:*\n🚗 Car: %s\n📅 Date: %s\n⏰ Time: %s\n🙋 Name: %s\n📞 Phone: %s\n🪪 License: %s\n\nPlease confirm or cancel your test drive below:",
		car.Label(),
		sess.ScheduledAt.Format("Monday, Jan 2"),
		sess.ScheduledAt.Format("03:04 PM"),
		sess.Name,
		sess.Phone,
		license,
	)
}

// Confirm writes exactly one test-drive record and clears the session.
// It is a no-op unless the session is still at CONFIRM_DETAILS, which, under
// the store's per-user lock, makes a duplicate confirm tap harmless. On a
// persistence failure the session is left untouched so confirm can be retried.
func (f *BookingFlow) Confirm(ctx context.Context, sess *models.Session) (bool, error) {
	if sess.Step != models.StepConfirmDetails {
		return false, nil
	}
	car, ok := sess.SelectedCar()
	if !ok {
		return false, nil
	}

	record := models.TestDriveRecord{
		UserID:      sess.UserID,
		CarRef:      sess.SelectedCarRef,
		Car:         car.Label(),
		ScheduledAt: sess.ScheduledAt,
		Name:        sess.Name,
		Phone:       sess.Phone,
		HasLicense:  sess.HasLicense != nil && *sess.HasLicense,
	}
	id, err := f.Records.Create(ctx, record)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBookingWriteFailed, err)
	}
	f.Logger.Info("test drive booked",
		zap.String("recordId", id),
		zap.String("userId", sess.UserID),
		zap.String("car", record.Car),
		zap.Time("scheduledAt", record.ScheduledAt),
	)

	sess.Step = models.StepBooked
	sess.Reset()
	return true, nil
}

// Cancel discards the booking and clears the session. Nothing is persisted.
func (f *BookingFlow) Cancel(sess *models.Session) {
	sess.Step = models.StepCanceled
	sess.Reset()
}
