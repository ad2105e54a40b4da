package webhook

import (
	"context"
	"net/http"
	"time"

	"pet-adoption-api/internal/platform/httpclient"
	"pet-adoption-api/internal/platform/logger"
	"pet-adoption-api/internal/ports/notify"
)

const dispatchTimeout = 5 * time.Second

// Dispatcher postea cada evento a un webhook externo (email, refresh
// de UI). Best-effort: un POST fallido se loguea y se descarta; jamás
// revierte la transición ya commiteada.
type Dispatcher struct {
	http *httpclient.Client
	url  string
	log  logger.Logger
}

func NewDispatcher(hc *httpclient.Client, url string, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		http: hc,
		url:  url,
		log:  log,
	}
}

var _ notify.Dispatcher = (*Dispatcher)(nil)

func (d *Dispatcher) Dispatch(ctx context.Context, e notify.Event) {
	if d == nil || d.http == nil || d.url == "" {
		return
	}

	// desacoplado del request: el caller no espera al webhook
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.http.DoJSON(sendCtx, http.MethodPost, d.url, nil, e, nil); err != nil {
			if d.log != nil {
				d.log.Warn("notify dispatch failed", map[string]any{
					"kind":      e.Kind,
					"entity_id": e.EntityID,
					"error":     err.Error(),
				})
			}
		}
	}()
}
