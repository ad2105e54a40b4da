package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-api/internal/platform/logger"
	"pet-adoption-api/internal/platform/metrics"
	"pet-adoption-api/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrConflict: un guard del state machine falló. Terminal para
	// este intento; no se reintenta.
	ErrConflict = errors.New("status conflict")
)

// WithdrawCascade se invoca después de commitear un withdraw, para
// que el módulo de applications rechace las pendientes. Se inyecta
// desde el router para no invertir la dependencia pets ← applications.
type WithdrawCascade func(ctx context.Context, petID string) error

// ShelterVerification consulta si el shelter está verificado. Se
// inyecta desde el router, igual que la cascada: pets no importa
// shelters.
type ShelterVerification func(ctx context.Context, shelterID string) (bool, error)

type Service struct {
	repo Repository
	now  func() time.Time

	log             logger.Logger
	notifier        notify.Dispatcher
	metrics         *metrics.Metrics
	onWithdraw      WithdrawCascade
	shelterVerified ShelterVerification
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		now:      time.Now,
		notifier: notify.Noop{},
	}
}

func (s *Service) WithNotifier(d notify.Dispatcher) *Service {
	if d != nil {
		s.notifier = d
	}
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) WithLogger(l logger.Logger) *Service {
	if l != nil {
		s.log = l
	}
	return s
}

func (s *Service) OnWithdraw(fn WithdrawCascade) *Service {
	s.onWithdraw = fn
	return s
}

func (s *Service) WithShelterVerification(fn ShelterVerification) *Service {
	s.shelterVerified = fn
	return s
}

type CreateInput struct {
	Name          string
	Species       string
	Breed         string
	Gender        string
	Size          string
	Color         string
	AgeYears      int
	AgeMonths     int
	Description   string
	BehaviorNotes string
	MedicalInfo   string
	PhotoURL      string
}

// Create registra la mascota bajo el shelter dado. Nace unlisted y
// sin aprobar, ignore lo que diga el caller.
func (s *Service) Create(ctx context.Context, shelterID string, in CreateInput) (Pet, error) {
	shelterID = strings.TrimSpace(shelterID)
	if shelterID == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" {
		return Pet{}, ErrInvalidInput
	}
	species := Species(strings.TrimSpace(in.Species))
	if !species.Valid() {
		return Pet{}, ErrInvalidInput
	}
	if in.AgeYears < 0 || in.AgeMonths < 0 || in.AgeMonths > 11 {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:            uuid.NewString(),
		ShelterID:     shelterID,
		Name:          strings.TrimSpace(in.Name),
		Species:       species,
		Breed:         strings.TrimSpace(in.Breed),
		Gender:        strings.TrimSpace(in.Gender),
		Size:          strings.TrimSpace(in.Size),
		Color:         strings.TrimSpace(in.Color),
		AgeYears:      in.AgeYears,
		AgeMonths:     in.AgeMonths,
		Description:   strings.TrimSpace(in.Description),
		BehaviorNotes: strings.TrimSpace(in.BehaviorNotes),
		MedicalInfo:   strings.TrimSpace(in.MedicalInfo),
		PhotoURL:      strings.TrimSpace(in.PhotoURL),
		Approved:      false,
		Status:        StatusUnlisted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByShelter(ctx context.Context, shelterID string) ([]Pet, error) {
	shelterID = strings.TrimSpace(shelterID)
	if shelterID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByShelter(ctx, shelterID)
}

func (s *Service) List(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx)
}

type UpdateProfileInput struct {
	// Punteros para PATCH real: nil = no tocar. Status y Approved no
	// están acá a propósito: se mueven por sus propias operaciones.
	Name          *string
	Breed         *string
	Gender        *string
	Size          *string
	Color         *string
	AgeYears      *int
	AgeMonths     *int
	Description   *string
	BehaviorNotes *string
	MedicalInfo   *string
	PhotoURL      *string
}

func (s *Service) UpdateProfile(ctx context.Context, petID string, in UpdateProfileInput) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	applyStr := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	applyStr(&p.Name, in.Name)
	applyStr(&p.Breed, in.Breed)
	applyStr(&p.Gender, in.Gender)
	applyStr(&p.Size, in.Size)
	applyStr(&p.Color, in.Color)
	applyStr(&p.Description, in.Description)
	applyStr(&p.BehaviorNotes, in.BehaviorNotes)
	applyStr(&p.MedicalInfo, in.MedicalInfo)
	applyStr(&p.PhotoURL, in.PhotoURL)
	if in.AgeYears != nil {
		p.AgeYears = *in.AgeYears
	}
	if in.AgeMonths != nil {
		p.AgeMonths = *in.AgeMonths
	}

	if p.Name == "" || p.Description == "" {
		return Pet{}, ErrInvalidInput
	}
	if p.AgeYears < 0 || p.AgeMonths < 0 || p.AgeMonths > 11 {
		return Pet{}, ErrInvalidInput
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// SetApproval escribe el flag approved (admin). No publica: el
// shelter decide cuándo pasar a available con Publish. Idempotente.
func (s *Service) SetApproval(ctx context.Context, petID string, approved bool) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	if p.Approved == approved {
		return p, nil
	}

	p.Approved = approved
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Publish mueve unlisted → available. Los guards de la política se
// repiten acá como backstop del invariante: approved por admin y
// shelter verificado, sin importar quién llame.
func (s *Service) Publish(ctx context.Context, petID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if !p.Approved {
		return Pet{}, ErrConflict
	}
	if s.shelterVerified != nil {
		verified, err := s.shelterVerified(ctx, p.ShelterID)
		if err != nil {
			return Pet{}, err
		}
		if !verified {
			return Pet{}, ErrConflict
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, p.ID, []Status{StatusUnlisted}, StatusAvailable, s.now())
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.Conflict("pet")
		}
		return Pet{}, err
	}

	s.metrics.Transition("pet", string(StatusAvailable))
	s.notifier.Dispatch(ctx, notify.Event{
		Kind:       "pet.published",
		EntityID:   updated.ID,
		PetID:      updated.ID,
		OccurredAt: updated.UpdatedAt,
	})
	return updated, nil
}

// Withdraw retira la mascota desde cualquier estado no terminal.
// Adopted => ErrConflict. Re-withdraw es no-op idempotente. Después
// del commit se cascadea el rechazo de applications pendientes.
func (s *Service) Withdraw(ctx context.Context, petID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.Status == StatusWithdrawn {
		return p, nil
	}

	from := []Status{StatusUnlisted, StatusAvailable, StatusPending}
	updated, err := s.repo.UpdateStatus(ctx, p.ID, from, StatusWithdrawn, s.now())
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.Conflict("pet")
		}
		return Pet{}, err
	}

	s.metrics.Transition("pet", string(StatusWithdrawn))
	if s.onWithdraw != nil {
		// best-effort: el withdraw ya está commiteado y no se revierte,
		// pero una cascada fallida deja applications pendientes colgadas
		if err := s.onWithdraw(ctx, updated.ID); err != nil && s.log != nil {
			s.log.Error("withdraw cascade failed", map[string]any{
				"pet_id": updated.ID,
				"error":  err.Error(),
			})
		}
	}
	s.notifier.Dispatch(ctx, notify.Event{
		Kind:       "pet.withdrawn",
		EntityID:   updated.ID,
		PetID:      updated.ID,
		OccurredAt: updated.UpdatedAt,
	})
	return updated, nil
}
