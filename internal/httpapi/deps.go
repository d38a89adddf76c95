package httpapi

import (
	"hireassist-engine/internal/config"
	"hireassist-engine/internal/events"
	"hireassist-engine/internal/poll"
	"hireassist-engine/internal/stats"
	"hireassist-engine/internal/store"
)

type Deps struct {
	DB    *store.DB
	Stats *stats.Engine
	Hub   *events.Hub

	// Status is the runner's last known state; nil when serving without a
	// scheduler.
	Status *poll.Status

	Config     func() config.Config
	ConfigPath string

	// SetSecret stores a credential in the OS keychain.
	SetSecret func(account, value string) error
}
