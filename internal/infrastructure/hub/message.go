package hub

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedMessage reports a consumer frame that could not be interpreted
// as a subscribe command. The hub logs and discards such frames; it never
// drops the connection over them.
var ErrMalformedMessage = errors.New("hub: malformed message")

type subscribeCommand struct {
	Subscribe string `json:"subscribe"`
}

// ParseSubscribeCommand extracts the topic from a consumer frame of the form
// {"subscribe":"book.BTC-PERPETUAL.100ms"}. Non-JSON frames and JSON objects
// without a subscribe field wrap ErrMalformedMessage.
func ParseSubscribeCommand(data []byte) (string, error) {
	var cmd subscribeCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if cmd.Subscribe == "" {
		return "", fmt.Errorf("%w: missing subscribe field", ErrMalformedMessage)
	}
	return cmd.Subscribe, nil
}
