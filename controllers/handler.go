// Package controllers holds the gin handlers. Every handler reads its
// dependencies from Handler, so tests can wire in-memory implementations.
package controllers

import (
	"github.com/zasai/zas-translate/assistant"
	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/repository"
	"github.com/zasai/zas-translate/translator"
)

type Handler struct {
	Users    repository.UserRepository
	Profiles repository.ProfileRepository
	History  repository.HistoryRepository
	Engine   *translator.Engine
	Proxy    *assistant.Proxy
	Monitor  *log.Monitor // optional, reported by Health

	// bounds concurrent POST /api/translate calls
	translateSlots chan struct{}
}

type Deps struct {
	Users          repository.UserRepository
	Profiles       repository.ProfileRepository
	History        repository.HistoryRepository
	Engine         *translator.Engine
	Proxy          *assistant.Proxy
	Monitor        *log.Monitor
	MaxTranslating int
}

func NewHandler(d Deps) *Handler {
	if d.MaxTranslating <= 0 {
		d.MaxTranslating = 100
	}
	return &Handler{
		Users:          d.Users,
		Profiles:       d.Profiles,
		History:        d.History,
		Engine:         d.Engine,
		Proxy:          d.Proxy,
		Monitor:        d.Monitor,
		translateSlots: make(chan struct{}, d.MaxTranslating),
	}
}
