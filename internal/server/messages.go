package server

// ButtonPressEvent is the only message clients send during play: the
// token of the button they pressed.
type ButtonPressEvent struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// ButtonPressType is the required value of ButtonPressEvent.Type.
const ButtonPressType = "ButtonPressEvent"

// ErrorMessage is sent to a single connection when its own request was
// bad. It never carries game state.
type ErrorMessage struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StartNewGameResponse answers a successful start-new-game request with
// one play URL per player, keyed by display name.
type StartNewGameResponse struct {
	Success   bool              `json:"success"`
	NameToURL map[string]string `json:"nameToUrl"`
}
