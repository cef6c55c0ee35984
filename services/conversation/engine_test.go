package conversation_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"sherpa/models"
	"sherpa/services/conversation"
	"sherpa/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeInventory implements inventoryRepo.InventoryRepository in memory.
type fakeInventory struct {
	types     []string
	makes     []string
	pages     map[int64][]models.CarListing
	err       error
	lastPrice models.PriceRange
}

func (f *fakeInventory) DistinctTypes(_ context.Context, price models.PriceRange) ([]string, error) {
	f.lastPrice = price
	return f.types, f.err
}

func (f *fakeInventory) DistinctMakes(_ context.Context, price models.PriceRange, _ string) ([]string, error) {
	f.lastPrice = price
	return f.makes, f.err
}

func (f *fakeInventory) ListingsPage(_ context.Context, price models.PriceRange, _, _ string, offset, _ int64) ([]models.CarListing, error) {
	f.lastPrice = price
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[offset], nil
}

// fakeRecords implements testdriveRepo.TestDriveRepository in memory.
type fakeRecords struct {
	created []models.TestDriveRecord
	err     error
}

func (f *fakeRecords) Create(_ context.Context, record models.TestDriveRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	record.ID = fmt.Sprintf("rec-%d", len(f.created)+1)
	f.created = append(f.created, record)
	return record.ID, nil
}

type fakeAssistant struct{ asked []string }

func (f *fakeAssistant) Ask(_ context.Context, _, question string) string {
	f.asked = append(f.asked, question)
	return "ai: " + question
}

type fakeImages struct{}

func (fakeImages) ImageURL(car models.CarListing) string {
	return "http://img.test/" + strings.ReplaceAll(car.Label(), " ", "_") + ".png"
}

// captureDeliverer records delivered action batches instead of sending them.
type captureDeliverer struct {
	batches [][]models.OutboundAction
}

func (d *captureDeliverer) Deliver(_ context.Context, _ string, actions []models.OutboundAction) {
	d.batches = append(d.batches, actions)
}

func (d *captureDeliverer) last() []models.OutboundAction {
	if len(d.batches) == 0 {
		return nil
	}
	return d.batches[len(d.batches)-1]
}

func car(i int) models.CarListing {
	return models.CarListing{
		Make:     "Hyundai",
		Model:    fmt.Sprintf("Model%d", i),
		Variant:  "Sportz",
		CarType:  "SUV",
		Year:     2018 + i,
		FuelType: "Petrol",
		Price:    int64(600000 + i*10000),
	}
}

func carPage(start, n int) []models.CarListing {
	out := make([]models.CarListing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, car(start+i))
	}
	return out
}

var testNow = time.Date(2025, time.March, 10, 11, 30, 0, 0, time.Local)

type fixture struct {
	svc       *conversation.DefaultConversationService
	inv       *fakeInventory
	records   *fakeRecords
	assistant *fakeAssistant
	delivered *captureDeliverer
	sessions  session.Store
}

func newFixture() *fixture {
	inv := &fakeInventory{
		types: []string{"SUV", "Sedan"},
		makes: []string{"Hyundai", "Maruti"},
		pages: map[int64][]models.CarListing{0: carPage(0, 5), 5: carPage(5, 3)},
	}
	records := &fakeRecords{}
	assistant := &fakeAssistant{}
	delivered := &captureDeliverer{}
	sessions := session.NewMemoryStore()

	svc := &conversation.DefaultConversationService{
		Sessions:  sessions,
		Catalog:   &conversation.MenuCatalog{Inventory: inv},
		Booking:   &conversation.BookingFlow{Records: records, Logger: zap.NewNop(), Now: func() time.Time { return testNow }},
		Assistant: assistant,
		Images:    fakeImages{},
		Deliverer: delivered,
		Logger:    zap.NewNop(),
	}
	return &fixture{svc: svc, inv: inv, records: records, assistant: assistant, delivered: delivered, sessions: sessions}
}

const user = "919900000001"

func (f *fixture) handle(t *testing.T, ev conversation.Event) {
	t.Helper()
	f.svc.Handle(context.Background(), user, ev)
}

func (f *fixture) step(t *testing.T) models.Step {
	t.Helper()
	return f.sessions.GetOrCreate(user).Step
}

// browse drives the funnel up to the first listings page.
func (f *fixture) browse(t *testing.T) {
	t.Helper()
	f.handle(t, conversation.FreeText("hi"))
	f.handle(t, conversation.Selection(conversation.SelectionBrowse))
	f.handle(t, conversation.Selection(conversation.Budget5To10))
	f.handle(t, conversation.Selection("SUV"))
	f.handle(t, conversation.Selection("Hyundai"))
}

// shownSelectIDs extracts the SELECT ids from the last delivered batch.
func (f *fixture) shownSelectIDs() []string {
	var ids []string
	for _, a := range f.delivered.last() {
		if card, ok := a.(models.SendListingCard); ok {
			ids = append(ids, card.SelectID)
		}
	}
	return ids
}

func texts(actions []models.OutboundAction) []string {
	var out []string
	for _, a := range actions {
		if txt, ok := a.(models.SendText); ok {
			out = append(out, txt.Body)
		}
	}
	return out
}

func TestGreetingStartsFunnel(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("hi"))

	require.Equal(t, models.StepGreeting, f.step(t))
	batch := f.delivered.last()
	require.Len(t, batch, 1)
	buttons, ok := batch[0].(models.SendButtons)
	require.True(t, ok)
	require.Len(t, buttons.Buttons, 1)
	assert.Equal(t, "Browse Cars", buttons.Buttons[0].Title)
}

func TestGreetingIsCaseInsensitive(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("  HELLO "))
	assert.Equal(t, models.StepGreeting, f.step(t))
}

func TestBrowseShowsFourBudgetOptions(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("hi"))
	f.handle(t, conversation.Selection(conversation.SelectionBrowse))

	require.Equal(t, models.StepAskBudget, f.step(t))
	var list models.SendList
	found := false
	for _, a := range f.delivered.last() {
		if l, ok := a.(models.SendList); ok {
			list, found = l, true
		}
	}
	require.True(t, found)
	require.Len(t, list.Options, 4)
	assert.Equal(t, "Under 5 Lakhs", list.Options[0].Title)
	assert.Equal(t, "20 Lakhs & Above", list.Options[3].Title)
}

func TestBudgetSelectionQueriesMidBand(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("hi"))
	f.handle(t, conversation.Selection(conversation.SelectionBrowse))
	f.handle(t, conversation.Selection(conversation.Budget5To10))

	require.Equal(t, models.StepAskType, f.step(t))
	assert.Equal(t, models.PriceRange{Min: 500_000, Max: 1_000_000, Inclusive: true}, f.inv.lastPrice)
}

func TestFullPageAdvancesOffsetShortPageEndsViewing(t *testing.T) {
	f := newFixture()
	f.browse(t)

	sess := f.sessions.GetOrCreate(user)
	require.Equal(t, models.StepViewCars, sess.Step)
	require.EqualValues(t, 5, sess.Offset)
	require.Len(t, f.shownSelectIDs(), 5)

	f.handle(t, conversation.FreeText("more"))
	sess = f.sessions.GetOrCreate(user)
	assert.Equal(t, models.StepDoneViewing, sess.Step)
	assert.EqualValues(t, 5, sess.Offset, "offset must not grow past a short page")
	require.Len(t, f.shownSelectIDs(), 3)
}

func TestEmptyFirstPageSaysNoCarsFound(t *testing.T) {
	f := newFixture()
	f.inv.pages = map[int64][]models.CarListing{}
	f.browse(t)

	assert.Equal(t, models.StepDoneViewing, f.step(t))
	assert.Contains(t, texts(f.delivered.last()), "No cars found.")
}

func TestBookingHappyPath(t *testing.T) {
	f := newFixture()
	f.browse(t)

	ids := f.shownSelectIDs()
	require.NotEmpty(t, ids)
	f.handle(t, conversation.Selection(ids[0]))
	require.Equal(t, models.StepSelectDate, f.step(t))

	f.handle(t, conversation.Selection(conversation.DateTomorrow))
	require.Equal(t, models.StepSelectTimeSlot, f.step(t))

	f.handle(t, conversation.Selection(conversation.SlotAfternoon))
	sess := f.sessions.GetOrCreate(user)
	require.Equal(t, models.StepAskName, sess.Step)
	wantAt := time.Date(2025, time.March, 11, 14, 0, 0, 0, time.Local)
	assert.Equal(t, wantAt, sess.ScheduledAt)

	f.handle(t, conversation.FreeText("Asha"))
	require.Equal(t, models.StepAskPhone, f.step(t))
	f.handle(t, conversation.FreeText("9999999999"))
	require.Equal(t, models.StepAskLicense, f.step(t))

	f.handle(t, conversation.Selection(conversation.SelectionYes))
	require.Equal(t, models.StepConfirmDetails, f.step(t))
	summary := texts(f.delivered.last())
	require.NotEmpty(t, summary)
	assert.Contains(t, summary[0], "Asha")
	assert.Contains(t, summary[0], "9999999999")

	f.handle(t, conversation.Selection(conversation.SelectionConfirm))
	require.Len(t, f.records.created, 1)
	rec := f.records.created[0]
	assert.Equal(t, user, rec.UserID)
	assert.Equal(t, "Asha", rec.Name)
	assert.Equal(t, "9999999999", rec.Phone)
	assert.True(t, rec.HasLicense)
	assert.Equal(t, wantAt, rec.ScheduledAt)

	// Terminal step clears the session.
	assert.Equal(t, models.StepIdle, f.step(t))
	assert.Contains(t, texts(f.delivered.last())[0], "confirmed")
}

func TestDuplicateConfirmWritesExactlyOnce(t *testing.T) {
	f := newFixture()
	f.completeBooking(t)
	require.Len(t, f.records.created, 1)

	f.handle(t, conversation.Selection(conversation.SelectionConfirm))
	assert.Len(t, f.records.created, 1, "duplicate confirm must not write a second record")
	assert.Equal(t, models.StepIdle, f.step(t))
}

func TestCancelClearsWithoutWrite(t *testing.T) {
	f := newFixture()
	f.reachConfirm(t)

	f.handle(t, conversation.Selection(conversation.SelectionCancel))
	assert.Empty(t, f.records.created)
	assert.Equal(t, models.StepIdle, f.step(t))
	assert.Contains(t, texts(f.delivered.last()), "❌ Booking canceled.")
}

func TestBookingWriteFailureAllowsRetry(t *testing.T) {
	f := newFixture()
	f.reachConfirm(t)

	f.records.err = fmt.Errorf("mongo down")
	f.handle(t, conversation.Selection(conversation.SelectionConfirm))
	assert.Equal(t, models.StepConfirmDetails, f.step(t), "session must not advance on write failure")
	assert.Empty(t, f.records.created)

	f.records.err = nil
	f.handle(t, conversation.Selection(conversation.SelectionConfirm))
	assert.Len(t, f.records.created, 1)
	assert.Equal(t, models.StepIdle, f.step(t))
}

func TestUnknownSelectionReprompts(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("hi"))
	f.handle(t, conversation.Selection(conversation.SelectionBrowse))

	f.handle(t, conversation.Selection("bogus_option"))
	require.Equal(t, models.StepAskBudget, f.step(t))
	list, ok := f.delivered.last()[0].(models.SendList)
	require.True(t, ok, "re-prompt should resend the budget list")
	assert.Len(t, list.Options, 4)
}

func TestStaleMenuTapAtTypeStepReprompts(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("hi"))
	f.handle(t, conversation.Selection(conversation.SelectionBrowse))
	f.handle(t, conversation.Selection(conversation.Budget5To10))
	require.Equal(t, models.StepAskType, f.step(t))

	// A re-tap on an old budget row must not become the car type.
	f.handle(t, conversation.Selection(conversation.Budget10To20))
	sess := f.sessions.GetOrCreate(user)
	assert.Equal(t, models.StepAskType, sess.Step)
	assert.Empty(t, sess.CarType)
	list, ok := f.delivered.last()[0].(models.SendList)
	require.True(t, ok, "re-prompt should resend the type list")
	assert.Equal(t, "Select Type", list.Header)

	f.handle(t, conversation.Selection("SUV"))
	assert.Equal(t, models.StepAskBrand, f.step(t))
}

func TestStaleMenuTapAtBrandStepReprompts(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("hi"))
	f.handle(t, conversation.Selection(conversation.SelectionBrowse))
	f.handle(t, conversation.Selection(conversation.Budget5To10))
	f.handle(t, conversation.Selection("SUV"))
	require.Equal(t, models.StepAskBrand, f.step(t))

	f.handle(t, conversation.Selection("Tata"))
	sess := f.sessions.GetOrCreate(user)
	assert.Equal(t, models.StepAskBrand, sess.Step)
	assert.Empty(t, sess.Brand)
	list, ok := f.delivered.last()[0].(models.SendList)
	require.True(t, ok, "re-prompt should resend the brand list")
	assert.Equal(t, "Select Brand", list.Header)

	f.handle(t, conversation.Selection("Hyundai"))
	assert.Equal(t, models.StepViewCars, f.step(t))
}

func TestCatalogFailureKeepsStep(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("hi"))
	f.handle(t, conversation.Selection(conversation.SelectionBrowse))

	f.inv.err = fmt.Errorf("connection refused")
	f.handle(t, conversation.Selection(conversation.Budget5To10))
	assert.Equal(t, models.StepAskBudget, f.step(t))
	require.NotEmpty(t, texts(f.delivered.last()))
	assert.Contains(t, texts(f.delivered.last())[0], "temporarily unavailable")
}

func TestFreeTextFallsBackToAssistant(t *testing.T) {
	f := newFixture()
	f.handle(t, conversation.FreeText("do you buy old cars?"))

	assert.Equal(t, models.StepIdle, f.step(t), "fallback must not mutate the step")
	require.Len(t, f.assistant.asked, 1)
	assert.Contains(t, texts(f.delivered.last()), "ai: do you buy old cars?")
}

func TestSessionResetLeaksNothingIntoNextFunnel(t *testing.T) {
	f := newFixture()
	f.completeBooking(t)

	f.handle(t, conversation.FreeText("hi"))
	sess := f.sessions.GetOrCreate(user)
	assert.Equal(t, models.StepGreeting, sess.Step)
	assert.Empty(t, sess.SelectedCarRef)
	assert.Empty(t, sess.Name)
	assert.Empty(t, sess.Phone)
	assert.Nil(t, sess.HasLicense)
	assert.Empty(t, sess.ShownCars)
	assert.Empty(t, sess.OfferedTypes)
	assert.Empty(t, sess.OfferedBrands)
}

func TestStepAlwaysValid(t *testing.T) {
	f := newFixture()
	events := []conversation.Event{
		conversation.FreeText("hi"),
		conversation.Selection("nonsense"),
		conversation.Selection(conversation.SelectionBrowse),
		conversation.FreeText("more"),
		conversation.Selection(conversation.Budget10To20),
		conversation.Selection("confirm_booking"),
		conversation.FreeText("what about servicing?"),
	}
	for _, ev := range events {
		f.handle(t, ev)
		assert.True(t, f.step(t).Valid(), "step %q left the enum", f.step(t))
	}
}

// reachConfirm drives the funnel to CONFIRM_DETAILS.
func (f *fixture) reachConfirm(t *testing.T) {
	t.Helper()
	f.browse(t)
	ids := f.shownSelectIDs()
	require.NotEmpty(t, ids)
	f.handle(t, conversation.Selection(ids[0]))
	f.handle(t, conversation.Selection(conversation.DateTomorrow))
	f.handle(t, conversation.Selection(conversation.SlotAfternoon))
	f.handle(t, conversation.FreeText("Asha"))
	f.handle(t, conversation.FreeText("9999999999"))
	f.handle(t, conversation.Selection(conversation.SelectionYes))
	require.Equal(t, models.StepConfirmDetails, f.step(t))
}

// completeBooking drives the funnel through a confirmed booking.
func (f *fixture) completeBooking(t *testing.T) {
	t.Helper()
	f.reachConfirm(t)
	f.handle(t, conversation.Selection(conversation.SelectionConfirm))
}
