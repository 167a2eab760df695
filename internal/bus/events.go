package bus

// EventKind says what an inbound update carried.
type EventKind string

const (
	EventCommand  EventKind = "command"  // slash command, e.g. /start or /cancel
	EventCallback EventKind = "callback" // inline keyboard button press
	EventText     EventKind = "text"     // free-form text message
	EventPhoto    EventKind = "photo"    // photo, optionally with caption
	EventOther    EventKind = "other"    // anything the transport can't classify
)

// InboundEvent is one update received from the messaging transport,
// normalized so the router never touches transport types.
type InboundEvent struct {
	Kind       EventKind
	UserID     int64  // sender
	ChatID     int64  // chat the update arrived in
	Command    string // for EventCommand, without the slash
	CallbackID string // for EventCallback, used to acknowledge the press
	Data       string // for EventCallback, the button's action tag
	MessageID  int    // for EventCallback, the message carrying the keyboard
	Text       string // for EventCommand/EventText
	PhotoRef   string // for EventPhoto, transport file reference
	Caption    string // for EventPhoto
}

// Button is one inline keyboard button: a label and the action tag the
// press reports back.
type Button struct {
	Label string
	Data  string
}

// OutboundMessage is one message for the transport to deliver. Exactly one
// of Text or PhotoRef is set. A non-zero EditMessageID replaces that
// message's text instead of sending a new one.
type OutboundMessage struct {
	ChatID        int64
	Text          string
	PhotoRef      string
	Caption       string
	Keyboard      [][]Button
	EditMessageID int
	AnswerID      string // callback query to acknowledge, if any
}
