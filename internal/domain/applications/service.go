package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-api/internal/platform/keylock"
	"pet-adoption-api/internal/platform/metrics"
	"pet-adoption-api/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyApplied = errors.New("pending application already exists")

	// ErrConflict: guard de estado falló (application no pending,
	// mascota no available, perdedor de carrera). Terminal.
	ErrConflict = errors.New("status conflict")

	// ErrUnavailable: no se consiguió exclusividad a tiempo.
	// Transitorio: el caller puede reintentar con backoff.
	ErrUnavailable = errors.New("resource busy, retry")
)

const defaultLockTimeout = 3 * time.Second

type Service struct {
	repo  Repository
	locks *keylock.Map
	now   func() time.Time

	lockTimeout time.Duration
	notifier    notify.Dispatcher
	metrics     *metrics.Metrics
}

// NewService arma el lifecycle manager. locks serializa toda decisión
// por mascota: la mascota y sus applications son UNA unidad de
// consistencia; mascotas distintas no se bloquean entre sí.
func NewService(repo Repository, locks *keylock.Map) *Service {
	if locks == nil {
		locks = keylock.New()
	}
	return &Service{
		repo:        repo,
		locks:       locks,
		now:         time.Now,
		lockTimeout: defaultLockTimeout,
		notifier:    notify.Noop{},
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

func (s *Service) WithLockTimeout(d time.Duration) *Service {
	if d > 0 {
		s.lockTimeout = d
	}
	return s
}

type CreateInput struct {
	PetID         string
	ShelterID     string
	AdopterUserID string
	Message       string
	HomeType      string
	HasChildren   bool
	HasOtherPets  bool
	Experience    string
}

// Create registra la solicitud (siempre nace pending). La política ya
// validó que la mascota esté aprobada y disponible; acá solo se evita
// duplicar una pending del mismo adopter sobre la misma mascota.
func (s *Service) Create(ctx context.Context, in CreateInput) (Application, error) {
	petID := strings.TrimSpace(in.PetID)
	shelterID := strings.TrimSpace(in.ShelterID)
	adopterID := strings.TrimSpace(in.AdopterUserID)

	if petID == "" || shelterID == "" || adopterID == "" {
		return Application{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Message) == "" {
		return Application{}, ErrInvalidInput
	}

	existing, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return Application{}, err
	}
	for _, a := range existing {
		if a.AdopterUserID == adopterID && a.Status == StatusPending {
			return Application{}, ErrAlreadyApplied
		}
	}

	now := s.now()
	a := Application{
		ID:            uuid.NewString(),
		PetID:         petID,
		ShelterID:     shelterID,
		AdopterUserID: adopterID,
		Message:       strings.TrimSpace(in.Message),
		HomeType:      strings.TrimSpace(in.HomeType),
		HasChildren:   in.HasChildren,
		HasOtherPets:  in.HasOtherPets,
		Experience:    strings.TrimSpace(in.Experience),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Application{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Application{}, ErrInvalidInput
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Application, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPet(ctx, petID)
}

func (s *Service) ListByAdopter(ctx context.Context, adopterUserID string) ([]Application, error) {
	adopterUserID = strings.TrimSpace(adopterUserID)
	if adopterUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByAdopter(ctx, adopterUserID)
}

// Approve decide la solicitud a favor, bajo exclusividad por mascota.
// El commit (application approved + pet adopted + cascada sobre las
// hermanas) es atómico en el repo: o pasa todo o no pasa nada.
// Exactamente UNA aprobación puede ganar por mascota; la perdedora de
// una carrera ve ErrConflict, nunca dos adopciones.
func (s *Service) Approve(ctx context.Context, id string) (DecideResult, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return DecideResult{}, err
	}

	release, err := s.acquirePet(ctx, a.PetID)
	if err != nil {
		return DecideResult{}, err
	}
	defer release()

	res, err := s.repo.Approve(ctx, a.ID, s.now())
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.Conflict("application")
		}
		return DecideResult{}, err
	}

	s.metrics.Transition("application", string(StatusApproved))
	s.metrics.Transition("pet", "adopted")
	s.notifier.Dispatch(ctx, notify.Event{
		Kind:       "application.approved",
		EntityID:   res.Application.ID,
		PetID:      res.Application.PetID,
		ActorID:    res.Application.AdopterUserID,
		OccurredAt: res.Application.UpdatedAt,
	})
	s.notifier.Dispatch(ctx, notify.Event{
		Kind:       "pet.adopted",
		EntityID:   res.Application.PetID,
		PetID:      res.Application.PetID,
		OccurredAt: res.Application.UpdatedAt,
	})
	for _, sib := range res.RejectedSiblings {
		s.metrics.Transition("application", string(StatusRejected))
		s.notifier.Dispatch(ctx, notify.Event{
			Kind:       "application.rejected",
			EntityID:   sib.ID,
			PetID:      sib.PetID,
			ActorID:    sib.AdopterUserID,
			OccurredAt: sib.UpdatedAt,
		})
	}
	return res, nil
}

// Reject decide en contra. Rechazar una ya rechazada es no-op exitoso
// (idempotente); rechazar una aprobada es ErrConflict.
func (s *Service) Reject(ctx context.Context, id, reason string) (Application, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}

	release, err := s.acquirePet(ctx, a.PetID)
	if err != nil {
		return Application{}, err
	}
	defer release()

	// re-leer bajo el lock: el estado pudo moverse mientras esperábamos
	a, err = s.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	switch a.Status {
	case StatusRejected:
		return a, nil
	case StatusApproved:
		s.metrics.Conflict("application")
		return Application{}, ErrConflict
	}

	rejected, err := s.repo.Reject(ctx, a.ID, strings.TrimSpace(reason), s.now())
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.Conflict("application")
		}
		return Application{}, err
	}

	s.metrics.Transition("application", string(StatusRejected))
	s.notifier.Dispatch(ctx, notify.Event{
		Kind:       "application.rejected",
		EntityID:   rejected.ID,
		PetID:      rejected.PetID,
		ActorID:    rejected.AdopterUserID,
		OccurredAt: rejected.UpdatedAt,
	})
	return rejected, nil
}

// RejectPendingForPet es la cascada de withdraw: toda pending de la
// mascota pasa a rejected con pet-no-longer-available.
func (s *Service) RejectPendingForPet(ctx context.Context, petID string) error {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return ErrInvalidInput
	}

	release, err := s.acquirePet(ctx, petID)
	if err != nil {
		return err
	}
	defer release()

	rejected, err := s.repo.RejectPendingByPet(ctx, petID, RejectReasonPetGone, s.now())
	if err != nil {
		return err
	}
	for _, a := range rejected {
		s.metrics.Transition("application", string(StatusRejected))
		s.notifier.Dispatch(ctx, notify.Event{
			Kind:       "application.rejected",
			EntityID:   a.ID,
			PetID:      a.PetID,
			ActorID:    a.AdopterUserID,
			OccurredAt: a.UpdatedAt,
		})
	}
	return nil
}

// acquirePet toma el lock de la mascota con timeout acotado. Vencido
// el plazo devuelve ErrUnavailable (retryable), NO ErrConflict: no
// sabemos todavía quién ganó nada.
func (s *Service) acquirePet(ctx context.Context, petID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	release, err := s.locks.Acquire(lockCtx, petID)
	if err != nil {
		return nil, ErrUnavailable
	}
	return release, nil
}
