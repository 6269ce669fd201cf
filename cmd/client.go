package cmd

import (
	"fmt"

	"github.com/counsel0/counsel/internal/chat"
	"github.com/counsel0/counsel/internal/config"
	"github.com/counsel0/counsel/internal/gateway"
	"github.com/counsel0/counsel/internal/log"
	"github.com/counsel0/counsel/internal/session"
	"github.com/counsel0/counsel/internal/speech"
)

// buildClient wires the full client stack from configuration: gateway,
// durable session pointer, speech capability, and the chat facade.
// The returned cleanup closes the pointer store and must always be called.
func buildClient(cfg config.Config, logger log.Logger) (*chat.Client, func(), error) {
	gw := gateway.New(cfg.APIBaseURL, gateway.StaticToken(cfg.APIToken),
		logger.With("component", "gateway"))

	pointer := session.Open(cfg.StateDir, logger.With("component", "state"))
	cleanup := func() {
		if err := pointer.Close(); err != nil {
			logger.Warn("closing state store", "error", err)
		}
	}

	client, err := chat.NewClient(chat.Options{
		Gateway:     gw,
		Identity:    session.StaticIdentity(cfg.UserID),
		Pointer:     pointer,
		Transcriber: speech.New(gw, logger.With("component", "speech")),
		Config:      cfg,
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("building chat client: %w", err)
	}

	return client, cleanup, nil
}
