package bookchat

import "context"

// ToggleTopic names the broadcast event that opens or closes the chat panel.
const ToggleTopic = "toggle-chatbot"

// ToggleEvent is one request to toggle the chat panel. The receiver calls Ack
// after the toggle has been applied; a publisher may wait for it.
type ToggleEvent interface {
	Ack() bool
}

// ToggleSource delivers external requests to toggle the chat panel.
// A host passes a ToggleSource to the widget instead of the widget looking up
// global handles on its own.
type ToggleSource interface {
	// Toggles subscribes to toggle requests. Events published after Toggles
	// returns are delivered on the channel, which is closed when ctx is done
	// or the source shuts down.
	Toggles(ctx context.Context) (<-chan ToggleEvent, error)
}
