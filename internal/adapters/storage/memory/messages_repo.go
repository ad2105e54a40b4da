package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pet-adoption-api/internal/domain/messages"
)

type messagesRepo struct {
	mu    sync.RWMutex
	byID  map[string]messages.Message
	seq   int64
}

func NewMessagesRepo() messages.Repository {
	return &messagesRepo{
		byID: make(map[string]messages.Message),
	}
}

func (r *messagesRepo) Create(ctx context.Context, m messages.Message) (messages.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return messages.Message{}, errors.New("message id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return messages.Message{}, errors.New("message already exists")
	}

	r.seq++
	m.Seq = r.seq
	r.byID[m.ID] = m
	return m, nil
}

func (r *messagesRepo) ListByApplication(ctx context.Context, applicationID string) ([]messages.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]messages.Message, 0)
	for _, m := range r.byID {
		if m.ApplicationID == applicationID {
			out = append(out, m)
		}
	}
	// orden estricto: CreatedAt, desempate por Seq de inserción
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
