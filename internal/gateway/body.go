package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/eventreg/regclient/internal/domain"
)

var emptyResult = []byte("{}")

// successBody returns body unchanged when it is JSON, and an empty object
// otherwise.
func successBody(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return emptyResult
	}
	return trimmed
}

// errorMessage prefers the JSON message or error field, then the raw text
// body, then the status text.
func errorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if json.Valid(trimmed) {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	} else if text := strings.TrimSpace(string(trimmed)); text != "" {
		return text
	}

	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// DecodeData unmarshals the data field of a response envelope into out.
// A missing data field leaves out untouched.
func DecodeData(body []byte, out any) error {
	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("json.Unmarshal envelope -> %w", err)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("json.Unmarshal data -> %w", err)
	}

	return nil
}

// DecodeMessage returns the message field of a response envelope.
func DecodeMessage(body []byte) string {
	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}
