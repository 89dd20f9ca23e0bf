package market

import (
	"bytes"
	"encoding/json"
)

type Outcome string

const (
	OutcomeUsable   Outcome = "usable"
	OutcomeRejected Outcome = "rejected"
	OutcomeEmpty    Outcome = "empty"
)

// rejectMarkers are the fields the provider uses to signal an error or a
// throttle/advisory notice instead of data.
var rejectMarkers = []string{"Error Message", "Note", "Information"}

// Classify decides whether a payload can be used for the given endpoint.
func Classify(kind Kind, p Payload) Outcome {
	for _, key := range rejectMarkers {
		if _, ok := p[key]; ok {
			return OutcomeRejected
		}
	}
	raw, ok := p[kind.DataKey()]
	if !ok || isBlank(raw) {
		return OutcomeEmpty
	}
	return OutcomeUsable
}

func isBlank(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return true
	}
	switch string(v) {
	case "null", `""`, "{}", "[]":
		return true
	}
	if v[0] == '{' {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(v, &m); err == nil && len(m) == 0 {
			return true
		}
	}
	return false
}
