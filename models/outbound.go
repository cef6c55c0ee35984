package models

// OutboundAction is an abstract message produced by the conversation engine.
// The presenter translates actions into WhatsApp payloads; the engine never
// touches transport concerns.
type OutboundAction interface {
	outbound()
}

// SendText sends a plain text message.
type SendText struct {
	Body string
}

// SendList sends an interactive list with a single section of rows.
type SendList struct {
	Header  string
	Body    string
	Button  string
	Options []Option
}

// SendButtons sends an interactive message with up to 3 reply buttons.
type SendButtons struct {
	Body    string
	Buttons []Option
}

// SendListingCard sends a car image with caption plus a SELECT reply button.
// If the image cannot be delivered the presenter falls back to the caption
// as plain text.
type SendListingCard struct {
	ImageURL string
	Caption  string
	SelectID string
}

func (SendText) outbound()        {}
func (SendList) outbound()        {}
func (SendButtons) outbound()     {}
func (SendListingCard) outbound() {}
