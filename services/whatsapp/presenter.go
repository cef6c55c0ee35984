// File: services/whatsapp/presenter.go
package whatsapp

import (
	"context"
	"sync"
	"time"

	"sherpa/models"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Presenter translates the engine's abstract outbound actions into WhatsApp
// payloads. Delivery is best-effort: failures are logged and swallowed, with
// one exception, image cards fall back to a text-only caption. Consecutive
// sends to the same recipient are paced by a per-recipient limiter so bursts
// of cards arrive in order; one user's batch never delays another user's.
type Presenter struct {
	Sender Sender
	Logger *zap.Logger

	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPresenter returns a Presenter pacing sends at one per 500ms per recipient.
func NewPresenter(sender Sender, logger *zap.Logger) *Presenter {
	return &Presenter{
		Sender:   sender,
		Logger:   logger,
		interval: 500 * time.Millisecond,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Deliver sends the actions to the user in order.
func (p *Presenter) Deliver(ctx context.Context, to string, actions []models.OutboundAction) {
	for _, action := range actions {
		switch act := action.(type) {
		case models.SendText:
			p.send(ctx, to, textPayload(act.Body))

		case models.SendList:
			p.send(ctx, to, listPayload(act))

		case models.SendButtons:
			p.send(ctx, to, buttonsPayload(act.Body, act.Buttons))

		case models.SendListingCard:
			p.deliverCard(ctx, to, act)

		default:
			p.Logger.Warn("unknown outbound action", zap.String("to", to))
		}
	}
}

// deliverCard sends the car image with caption, falling back to a plain
// text caption when the image cannot be delivered, then the SELECT button.
func (p *Presenter) deliverCard(ctx context.Context, to string, card models.SendListingCard) {
	if err := p.pace(ctx, to); err != nil {
		return
	}
	imagePayload := Payload{
		Type:  "image",
		Image: &ImagePayload{Link: card.ImageURL, Caption: card.Caption},
	}
	if err := p.Sender.Send(ctx, to, imagePayload); err != nil {
		p.Logger.Warn("image send failed, falling back to text",
			zap.String("to", to), zap.Error(err))
		if err := p.Sender.Send(ctx, to, textPayload(card.Caption)); err != nil {
			p.Logger.Warn("caption fallback send failed", zap.String("to", to), zap.Error(err))
		}
	}

	p.send(ctx, to, buttonsPayload("SELECT", []models.Option{{ID: card.SelectID, Title: "SELECT"}}))
}

func (p *Presenter) send(ctx context.Context, to string, payload Payload) {
	if err := p.pace(ctx, to); err != nil {
		return
	}
	if err := p.Sender.Send(ctx, to, payload); err != nil {
		p.Logger.Warn("whatsapp send failed", zap.String("to", to),
			zap.String("type", payload.Type), zap.Error(err))
	}
}

// pace waits on the recipient's own limiter. Pacing one conversation must not
// stall deliveries to anyone else.
func (p *Presenter) pace(ctx context.Context, to string) error {
	if p.interval <= 0 {
		return nil
	}
	return p.limiterFor(to).Wait(ctx)
}

func (p *Presenter) limiterFor(to string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.limiters == nil {
		p.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := p.limiters[to]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[to] = limiter
	}
	return limiter
}

func textPayload(body string) Payload {
	return Payload{Type: "text", Text: &TextPayload{Body: body}}
}

func listPayload(list models.SendList) Payload {
	return Payload{
		Type: "interactive",
		Interactive: &InteractivePayload{
			Type:   "list",
			Header: &InteractiveHeader{Type: "text", Text: list.Header},
			Body:   InteractiveBody{Text: list.Body},
			Action: InteractiveAction{
				Button:   list.Button,
				Sections: []InteractiveSection{{Title: "Options", Rows: list.Options}},
			},
		},
	}
}

func buttonsPayload(body string, buttons []models.Option) Payload {
	replies := make([]InteractiveButton, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, InteractiveButton{Type: "reply", Reply: b})
	}
	return Payload{
		Type: "interactive",
		Interactive: &InteractivePayload{
			Type:   "button",
			Body:   InteractiveBody{Text: body},
			Action: InteractiveAction{Buttons: replies},
		},
	}
}
