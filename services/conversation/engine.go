// File: services/conversation/engine.go
package conversation

import (
	"context"
	"fmt"
	"strings"

	"sherpa/models"
	"sherpa/services/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventKind distinguishes the two inbound event shapes.
type EventKind int

const (
	EventFreeText EventKind = iota
	EventSelection
)

// Event is a single inbound user event: free text or a menu selection.
type Event struct {
	Kind      EventKind
	Text      string
	Selection string
}

// FreeText builds a free-text event.
func FreeText(text string) Event {
	return Event{Kind: EventFreeText, Text: text}
}

// Selection builds a menu-selection event.
func Selection(id string) Event {
	return Event{Kind: EventSelection, Selection: id}
}

// EventFromMessage converts an inbound webhook message into an engine event.
// It returns false for message types the funnel does not consume.
func EventFromMessage(msg *models.InboundMessage) (Event, bool) {
	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return Event{}, false
		}
		return FreeText(msg.Text.Body), true
	case "interactive":
		sel := msg.SelectionID()
		if sel == "" {
			return Event{}, false
		}
		return Selection(sel), true
	}
	return Event{}, false
}

// Assistant answers free text that matches no structured step.
// Implementations must never mutate conversational state.
type Assistant interface {
	Ask(ctx context.Context, userID, question string) string
}

// ImageResolver maps a car listing to a hosted image URL.
type ImageResolver interface {
	ImageURL(car models.CarListing) string
}

// Deliverer sends the engine's ordered outbound actions to the user.
type Deliverer interface {
	Deliver(ctx context.Context, to string, actions []models.OutboundAction)
}

// ConversationService dispatches inbound events against per-user sessions.
type ConversationService interface {
	Handle(ctx context.Context, userID string, ev Event)
}

// DefaultConversationService implements ConversationService. Dispatch runs
// under the session store's per-user lock, so the read-transition-send cycle
// is atomic per user: a double-tapped button or a provider redelivery can
// never interleave with itself.
type DefaultConversationService struct {
	Sessions  session.Store
	Catalog   *MenuCatalog
	Booking   *BookingFlow
	Assistant Assistant
	Images    ImageResolver
	Deliverer Deliverer
	Logger    *zap.Logger
}

// Handle processes one inbound event for a user and delivers the resulting
// outbound actions in order.
func (svc *DefaultConversationService) Handle(ctx context.Context, userID string, ev Event) {
	svc.Sessions.Do(userID, func(sess *models.Session) {
		actions := svc.dispatch(ctx, sess, ev)
		if len(actions) > 0 {
			svc.Deliverer.Deliver(ctx, userID, actions)
		}
	})
}

func (svc *DefaultConversationService) dispatch(ctx context.Context, sess *models.Session, ev Event) []models.OutboundAction {
	switch ev.Kind {
	case EventFreeText:
		return svc.dispatchText(ctx, sess, ev.Text)
	case EventSelection:
		return svc.dispatchSelection(ctx, sess, ev.Selection)
	}
	return nil
}

func isGreeting(text string) bool {
	switch text {
	case "hi", "hello", "start":
		return true
	}
	return false
}

func (svc *DefaultConversationService) dispatchText(ctx context.Context, sess *models.Session, text string) []models.OutboundAction {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch {
	case isGreeting(lower):
		// A greeting restarts the funnel from any step.
		sess.Reset()
		sess.Step = models.StepGreeting
		return greetingActions()

	case lower == "more" && sess.Step == models.StepViewCars:
		return svc.listingsPage(ctx, sess, nil)

	case sess.Step == models.StepAskName:
		svc.Booking.ProvideName(sess, trimmed)
		return []models.OutboundAction{models.SendText{Body: msgAskPhone}}

	case sess.Step == models.StepAskPhone:
		svc.Booking.ProvidePhone(sess, trimmed)
		return []models.OutboundAction{licenseButtons()}

	default:
		// Lowest priority: free text outside the structured steps goes to
		// the AI fallback. The step never changes.
		reply := svc.Assistant.Ask(ctx, sess.UserID, trimmed)
		return []models.OutboundAction{models.SendText{Body: reply}}
	}
}

func (svc *DefaultConversationService) dispatchSelection(ctx context.Context, sess *models.Session, sel string) []models.OutboundAction {
	switch {
	case sess.Step == models.StepGreeting && sel == SelectionBrowse:
		sess.Step = models.StepAskBudget
		return []models.OutboundAction{models.SendText{Body: msgAskBudget}, budgetList()}

	case sess.Step == models.StepAskBudget:
		return svc.onBudget(ctx, sess, sel)

	case sess.Step == models.StepAskType:
		return svc.onType(ctx, sess, sel)

	case sess.Step == models.StepAskBrand:
		return svc.onBrand(ctx, sess, sel)

	case (sess.Step == models.StepViewCars || sess.Step == models.StepDoneViewing) && strings.HasPrefix(sel, "book_"):
		ref := strings.TrimPrefix(sel, "book_")
		if !svc.Booking.SelectCar(sess, ref) {
			return svc.prompt(ctx, sess)
		}
		car, _ := sess.SelectedCar()
		return []models.OutboundAction{dateList(car.Label())}

	case sess.Step == models.StepSelectDate:
		if !svc.Booking.SelectDate(sess, sel) {
			return svc.prompt(ctx, sess)
		}
		return []models.OutboundAction{slotButtons()}

	case sess.Step == models.StepSelectTimeSlot:
		if !svc.Booking.SelectTimeSlot(sess, sel) {
			return svc.prompt(ctx, sess)
		}
		body := fmt.Sprintf("Great! %s at %d:00. What's your name?",
			dateTitle(sess.DateChoice), slotHours[sess.TimeSlot])
		return []models.OutboundAction{models.SendText{Body: body}}

	case sess.Step == models.StepAskLicense && (sel == SelectionYes || sel == SelectionNo):
		svc.Booking.ProvideLicense(sess, sel == SelectionYes)
		return []models.OutboundAction{models.SendText{Body: svc.Booking.Summary(sess)}, confirmButtons()}

	case sess.Step == models.StepConfirmDetails && sel == SelectionConfirm:
		return svc.onConfirm(ctx, sess)

	case sess.Step == models.StepConfirmDetails && sel == SelectionCancel:
		svc.Booking.Cancel(sess)
		return []models.OutboundAction{models.SendText{Body: msgCanceled}}

	default:
		// A selection id the current step doesn't recognize is a no-op:
		// the step stays put and the current prompt is re-sent.
		return svc.prompt(ctx, sess)
	}
}

func (svc *DefaultConversationService) onBudget(ctx context.Context, sess *models.Session, budgetID string) []models.OutboundAction {
	if _, err := ResolveBudget(budgetID); err != nil {
		svc.Logger.Warn("unknown budget id", zap.String("userId", sess.UserID), zap.String("budgetId", budgetID))
		return svc.prompt(ctx, sess)
	}
	types, err := svc.Catalog.TypesForBudget(ctx, budgetID)
	if err != nil {
		svc.Logger.Error("type lookup failed", zap.String("userId", sess.UserID), zap.Error(err))
		return []models.OutboundAction{models.SendText{Body: msgCatalogDown}}
	}
	sess.Budget = budgetID
	sess.Step = models.StepAskType
	sess.OfferedTypes = optionIDs(types)
	if len(types) == 0 {
		return []models.OutboundAction{models.SendText{Body: msgNoTypes}}
	}
	return []models.OutboundAction{models.SendText{Body: msgAskType}, typeList(types)}
}

func (svc *DefaultConversationService) onType(ctx context.Context, sess *models.Session, carType string) []models.OutboundAction {
	// A tap from a stale menu (an old budget row, a retried list) is not a
	// type; only ids that were offered at this step are accepted.
	if !offered(sess.OfferedTypes, carType) {
		return svc.prompt(ctx, sess)
	}
	brands, err := svc.Catalog.BrandsForBudgetAndType(ctx, sess.Budget, carType)
	if err != nil {
		svc.Logger.Error("brand lookup failed", zap.String("userId", sess.UserID), zap.Error(err))
		return []models.OutboundAction{models.SendText{Body: msgCatalogDown}}
	}
	sess.CarType = carType
	sess.Step = models.StepAskBrand
	sess.OfferedBrands = optionIDs(brands)
	if len(brands) == 0 {
		return []models.OutboundAction{models.SendText{Body: msgNoBrands}}
	}
	return []models.OutboundAction{models.SendText{Body: msgAskBrand}, brandList(brands)}
}

func (svc *DefaultConversationService) onBrand(ctx context.Context, sess *models.Session, brand string) []models.OutboundAction {
	if !offered(sess.OfferedBrands, brand) {
		return svc.prompt(ctx, sess)
	}
	sess.Brand = brand
	sess.Offset = 0
	sess.ShownCars = make(map[string]models.CarListing)
	preamble := []models.OutboundAction{models.SendText{Body: msgListings}}
	return svc.listingsPage(ctx, sess, preamble)
}

// listingsPage sends one page of cars and advances the pagination state:
// offset grows by the page size only when a full page came back; a short
// page ends browsing at DONE_VIEWING. On catalog failure nothing moves.
func (svc *DefaultConversationService) listingsPage(ctx context.Context, sess *models.Session, preamble []models.OutboundAction) []models.OutboundAction {
	page, err := svc.Catalog.ListingsPage(ctx, sess.Budget, sess.CarType, sess.Brand, sess.Offset)
	if err != nil {
		svc.Logger.Error("listings page failed", zap.String("userId", sess.UserID), zap.Error(err))
		return append(preamble, models.SendText{Body: msgCatalogDown})
	}

	actions := preamble
	if len(page) == 0 {
		if sess.Offset == 0 {
			actions = append(actions, models.SendText{Body: msgNoCars})
		} else {
			actions = append(actions, models.SendText{Body: msgNoMoreCars})
		}
		sess.Step = models.StepDoneViewing
		return actions
	}

	if sess.ShownCars == nil {
		sess.ShownCars = make(map[string]models.CarListing)
	}
	for _, car := range page {
		// Mint a stable booking reference per listing shown; the selection
		// id carries it opaquely and is resolved back through the session.
		ref := uuid.New().String()
		sess.ShownCars[ref] = car
		actions = append(actions, models.SendListingCard{
			ImageURL: svc.Images.ImageURL(car),
			Caption:  car.Caption(),
			SelectID: "book_" + ref,
		})
	}

	if len(page) == PageSize {
		sess.Offset += PageSize
		sess.Step = models.StepViewCars
		actions = append(actions, models.SendText{Body: msgMoreHint})
	} else {
		sess.Step = models.StepDoneViewing
	}
	return actions
}

func (svc *DefaultConversationService) onConfirm(ctx context.Context, sess *models.Session) []models.OutboundAction {
	written, err := svc.Booking.Confirm(ctx, sess)
	if err != nil {
		svc.Logger.Error("booking confirm failed", zap.String("userId", sess.UserID), zap.Error(err))
		return []models.OutboundAction{models.SendText{Body: msgBookingFailed}}
	}
	if !written {
		return svc.prompt(ctx, sess)
	}
	return []models.OutboundAction{models.SendText{Body: msgConfirmed}}
}

func optionIDs(opts []models.Option) []string {
	ids := make([]string, 0, len(opts))
	for _, opt := range opts {
		ids = append(ids, opt.ID)
	}
	return ids
}

func offered(ids []string, sel string) bool {
	for _, id := range ids {
		if id == sel {
			return true
		}
	}
	return false
}

// prompt re-sends the current step's prompt without changing any state.
func (svc *DefaultConversationService) prompt(ctx context.Context, sess *models.Session) []models.OutboundAction {
	switch sess.Step {
	case models.StepGreeting:
		return greetingActions()
	case models.StepAskBudget:
		return []models.OutboundAction{budgetList()}
	case models.StepAskType:
		types, err := svc.Catalog.TypesForBudget(ctx, sess.Budget)
		if err != nil {
			return []models.OutboundAction{models.SendText{Body: msgCatalogDown}}
		}
		return []models.OutboundAction{typeList(types)}
	case models.StepAskBrand:
		brands, err := svc.Catalog.BrandsForBudgetAndType(ctx, sess.Budget, sess.CarType)
		if err != nil {
			return []models.OutboundAction{models.SendText{Body: msgCatalogDown}}
		}
		return []models.OutboundAction{brandList(brands)}
	case models.StepViewCars:
		return []models.OutboundAction{models.SendText{Body: msgViewCarsHint}}
	case models.StepDoneViewing:
		return []models.OutboundAction{models.SendText{Body: msgDoneViewingHint}}
	case models.StepSelectDate:
		car, _ := sess.SelectedCar()
		return []models.OutboundAction{dateList(car.Label())}
	case models.StepSelectTimeSlot:
		return []models.OutboundAction{slotButtons()}
	case models.StepAskName:
		return []models.OutboundAction{models.SendText{Body: msgAskName}}
	case models.StepAskPhone:
		return []models.OutboundAction{models.SendText{Body: msgAskPhone}}
	case models.StepAskLicense:
		return []models.OutboundAction{licenseButtons()}
	case models.StepConfirmDetails:
		return []models.OutboundAction{models.SendText{Body: svc.Booking.Summary(sess)}, confirmButtons()}
	default:
		return []models.OutboundAction{models.SendText{Body: msgSayHi}}
	}
}
