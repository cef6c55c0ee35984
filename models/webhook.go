package models

// WebhookPayload mirrors the WhatsApp Cloud API delivery envelope. The only
// path the bot consumes is entry[0].changes[0].value.messages[0]; deliveries
// without a message (status updates etc.) are acknowledged and skipped.
type WebhookPayload struct {
	Entry []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	Messages []InboundMessage `json:"messages"`
}

// InboundMessage is a single user message: either free text or an
// interactive reply carrying the id of the tapped list row or button.
type InboundMessage struct {
	ID          string              `json:"id"`
	From        string              `json:"from"`
	Type        string              `json:"type"`
	Text        *InboundText        `json:"text,omitempty"`
	Interactive *InboundInteractive `json:"interactive,omitempty"`
}

type InboundText struct {
	Body string `json:"body"`
}

type InboundInteractive struct {
	Type        string        `json:"type"`
	ListReply   *InboundReply `json:"list_reply,omitempty"`
	ButtonReply *InboundReply `json:"button_reply,omitempty"`
}

type InboundReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FirstMessage returns the nested message object, or nil when the delivery
// carries none.
func (p *WebhookPayload) FirstMessage() *InboundMessage {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return nil
	}
	msgs := p.Entry[0].Changes[0].Value.Messages
	if len(msgs) == 0 {
		return nil
	}
	return &msgs[0]
}

// SelectionID returns the tapped option id for interactive messages.
func (m *InboundMessage) SelectionID() string {
	if m.Interactive == nil {
		return ""
	}
	if m.Interactive.ListReply != nil {
		return m.Interactive.ListReply.ID
	}
	if m.Interactive.ButtonReply != nil {
		return m.Interactive.ButtonReply.ID
	}
	return ""
}
