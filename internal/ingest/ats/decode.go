package ats

import (
	"encoding/json"

	"go.uber.org/zap"

	"hireassist-engine/internal/logging"
)

// DecodeEach unmarshals every element of raw into a T. Elements that fail
// to decode are logged and skipped so one bad record never sinks a board.
func DecodeEach[T any](source string, raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			logging.Component("ats").Warn("skip malformed record",
				zap.String("source", source),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}
