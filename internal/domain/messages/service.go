package messages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const maxContentLen = 4000

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Post agrega un mensaje al hilo de la application. La política
// (adopter autor o shelter dueño) ya se evaluó en el handler; acá
// solo valida forma. El mensaje queda inmutable.
func (s *Service) Post(ctx context.Context, applicationID, senderUserID, content string) (Message, error) {
	applicationID = strings.TrimSpace(applicationID)
	senderUserID = strings.TrimSpace(senderUserID)
	content = strings.TrimSpace(content)

	if applicationID == "" || senderUserID == "" || content == "" {
		return Message{}, ErrInvalidInput
	}
	if len(content) > maxContentLen {
		return Message{}, ErrInvalidInput
	}

	m := Message{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		SenderUserID:  senderUserID,
		Content:       content,
		CreatedAt:     s.now(),
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) ListByApplication(ctx context.Context, applicationID string) ([]Message, error) {
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByApplication(ctx, applicationID)
}
