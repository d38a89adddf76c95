// Package events fans run notifications out to SSE subscribers.
package events

import (
	"encoding/json"
	"time"
)

// Event types published by the engine.
const (
	TypePing           = "ping"
	TypeStageStarted   = "stage_started"
	TypeStageFinished  = "stage_finished"
	TypeCompanyUpgrade = "company_upgraded"
	TypeAlerts         = "alerts"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	Stage   string          `json:"stage,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Make builds an event envelope; data is marshalled as-is.
func Make(typ, stage string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	return Event{Type: typ, Version: 1, At: time.Now().UTC(), Stage: stage, Data: raw}
}

func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
