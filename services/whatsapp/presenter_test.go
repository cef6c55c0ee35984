package whatsapp_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"sherpa/models"
	"sherpa/services/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSender records payloads and can fail selectively by type.
type fakeSender struct {
	mu       sync.Mutex
	sent     []whatsapp.Payload
	failType string
}

func (f *fakeSender) Send(_ context.Context, to string, payload whatsapp.Payload) error {
	if payload.Type == f.failType {
		return fmt.Errorf("send rejected")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
	return nil
}

func newTestPresenter(sender whatsapp.Sender) *whatsapp.Presenter {
	// Zero-value interval: tests do not pace.
	return &whatsapp.Presenter{Sender: sender, Logger: zap.NewNop()}
}

func TestDeliverTextAndList(t *testing.T) {
	sender := &fakeSender{}
	p := newTestPresenter(sender)

	p.Deliver(context.Background(), "911", []models.OutboundAction{
		models.SendText{Body: "hello"},
		models.SendList{Header: "Select Budget", Body: "Choose:", Button: "Select",
			Options: []models.Option{{ID: "a", Title: "A"}}},
	})

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "text", sender.sent[0].Type)
	assert.Equal(t, "hello", sender.sent[0].Text.Body)

	list := sender.sent[1]
	require.Equal(t, "interactive", list.Type)
	require.NotNil(t, list.Interactive)
	assert.Equal(t, "list", list.Interactive.Type)
	assert.Equal(t, "Select Budget", list.Interactive.Header.Text)
	require.Len(t, list.Interactive.Action.Sections, 1)
	assert.Equal(t, "a", list.Interactive.Action.Sections[0].Rows[0].ID)
}

func TestDeliverButtons(t *testing.T) {
	sender := &fakeSender{}
	p := newTestPresenter(sender)

	p.Deliver(context.Background(), "911", []models.OutboundAction{
		models.SendButtons{Body: "Confirm?", Buttons: []models.Option{
			{ID: "confirm_booking", Title: "Confirm"},
			{ID: "cancel_booking", Title: "Cancel"},
		}},
	})

	require.Len(t, sender.sent, 1)
	action := sender.sent[0].Interactive.Action
	require.Len(t, action.Buttons, 2)
	assert.Equal(t, "reply", action.Buttons[0].Type)
	assert.Equal(t, "confirm_booking", action.Buttons[0].Reply.ID)
}

func TestListingCardSendsImageThenSelectButton(t *testing.T) {
	sender := &fakeSender{}
	p := newTestPresenter(sender)

	p.Deliver(context.Background(), "911", []models.OutboundAction{
		models.SendListingCard{ImageURL: "http://img/x.png", Caption: "🚗 Car", SelectID: "book_ref-1"},
	})

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "image", sender.sent[0].Type)
	assert.Equal(t, "http://img/x.png", sender.sent[0].Image.Link)
	assert.Equal(t, "🚗 Car", sender.sent[0].Image.Caption)

	button := sender.sent[1]
	assert.Equal(t, "interactive", button.Type)
	assert.Equal(t, "book_ref-1", button.Interactive.Action.Buttons[0].Reply.ID)
}

func TestListingCardFallsBackToTextCaption(t *testing.T) {
	sender := &fakeSender{failType: "image"}
	p := newTestPresenter(sender)

	p.Deliver(context.Background(), "911", []models.OutboundAction{
		models.SendListingCard{ImageURL: "http://img/x.png", Caption: "🚗 Car", SelectID: "book_ref-1"},
	})

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "text", sender.sent[0].Type)
	assert.Equal(t, "🚗 Car", sender.sent[0].Text.Body)
	assert.Equal(t, "interactive", sender.sent[1].Type)
}

func TestPacingIsPerRecipient(t *testing.T) {
	sender := &fakeSender{}
	p := whatsapp.NewPresenter(sender, zap.NewNop())

	// User A drains a multi-message batch through their own limiter.
	aDone := make(chan struct{})
	go func() {
		defer close(aDone)
		p.Deliver(context.Background(), "userA", []models.OutboundAction{
			models.SendText{Body: "a1"},
			models.SendText{Body: "a2"},
			models.SendText{Body: "a3"},
		})
	}()

	// While A's batch is still paced out, B's single message must go through
	// without queueing behind it.
	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	p.Deliver(context.Background(), "userB", []models.OutboundAction{
		models.SendText{Body: "b1"},
	})
	elapsed := time.Since(start)
	<-aDone

	assert.Less(t, elapsed, 300*time.Millisecond,
		"one recipient's batch must not delay another recipient")

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Len(t, sender.sent, 4)
}

func TestSendFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{failType: "text"}
	p := newTestPresenter(sender)

	// Best-effort delivery: a failing text send must not panic or abort.
	p.Deliver(context.Background(), "911", []models.OutboundAction{
		models.SendText{Body: "hello"},
		models.SendButtons{Body: "next", Buttons: []models.Option{{ID: "x", Title: "X"}}},
	})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "interactive", sender.sent[0].Type)
}
