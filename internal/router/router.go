package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	mem "pet-adoption-api/internal/adapters/storage/memory"
	pg "pet-adoption-api/internal/adapters/storage/postgres"
	"pet-adoption-api/internal/domain/applications"
	"pet-adoption-api/internal/domain/identity"
	"pet-adoption-api/internal/domain/messages"
	"pet-adoption-api/internal/domain/pets"
	"pet-adoption-api/internal/domain/shelters"
	"pet-adoption-api/internal/middleware"
	"pet-adoption-api/internal/platform/keylock"
	"pet-adoption-api/internal/platform/logger"
	"pet-adoption-api/internal/platform/metrics"
	"pet-adoption-api/internal/ports/auth"
	"pet-adoption-api/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.Verifier // nil => modo dev (X-Debug-User-ID)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Log      logger.Logger
	Metrics  *metrics.Metrics
	Notifier notify.Dispatcher

	// Timeout para la exclusividad por mascota en las decisiones.
	PetLockTimeout time.Duration

	// BootstrapAdminID siembra el primer admin (el registro no otorga
	// admin jamás). Idempotente si el actor ya existe.
	BootstrapAdminID string
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	if opts.Metrics != nil {
		r.Use(middleware.CountDenials(opts.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		identityRepo identity.Repository
		shelterRepo  shelters.Repository
		petRepo      pets.Repository
		appRepo      applications.Repository
		messageRepo  messages.Repository
	)

	if opts.DB != nil {
		identityRepo = pg.NewIdentityRepo(opts.DB)
		shelterRepo = pg.NewSheltersRepo(opts.DB)
		petRepo = pg.NewPetsRepo(opts.DB)
		appRepo = pg.NewApplicationsRepo(opts.DB)
		messageRepo = pg.NewMessagesRepo(opts.DB)
	} else {
		memPets := mem.NewPetRepo()
		identityRepo = mem.NewIdentityRepo()
		shelterRepo = mem.NewSheltersRepo()
		petRepo = memPets
		// el repo de applications necesita el de pets: el approve
		// atómico toca ambos bajo el mismo commit
		appRepo = mem.NewApplicationsRepo(memPets)
		messageRepo = mem.NewMessagesRepo()
	}

	if adminID := opts.BootstrapAdminID; adminID != "" {
		seedAdmin(identityRepo, adminID, opts.Log)
	}

	// Services por módulo
	identitySvc := identity.NewService(identityRepo)
	sheltersSvc := shelters.NewService(shelterRepo)

	locks := keylock.New()
	petsSvc := pets.NewService(petRepo).
		WithNotifier(opts.Notifier).
		WithMetrics(opts.Metrics).
		WithLogger(opts.Log).
		// backstop del invariante de publicación; cableado acá para no
		// acoplar pets → shelters
		WithShelterVerification(func(ctx context.Context, shelterID string) (bool, error) {
			sh, err := sheltersSvc.GetByID(ctx, shelterID)
			if err != nil {
				return false, err
			}
			return sh.Verified, nil
		})
	appsSvc := applications.NewService(appRepo, locks).
		WithNotifier(opts.Notifier).
		WithMetrics(opts.Metrics).
		WithLockTimeout(opts.PetLockTimeout)
	messagesSvc := messages.NewService(messageRepo)

	// withdraw cascadea el rechazo de pendings; se cablea acá para no
	// acoplar pets → applications
	petsSvc.OnWithdraw(appsSvc.RejectPendingForPet)

	// Rutas por módulo
	identity.RegisterRoutes(r, identitySvc)
	shelters.RegisterRoutes(r, sheltersSvc, identitySvc)
	pets.RegisterRoutes(r, petsSvc, sheltersSvc, identitySvc)
	applications.RegisterRoutes(r, appsSvc, petsSvc, sheltersSvc, identitySvc)
	messages.RegisterRoutes(r, messagesSvc, appsSvc, sheltersSvc, identitySvc)

	if opts.Log != nil {
		backend := "memory"
		if opts.DB != nil {
			backend = "postgres"
		}
		opts.Log.Info("router ready", map[string]any{"storage": backend})
	}

	return r
}

// seedAdmin crea (si hace falta) el actor y le otorga admin directo
// contra el repo: el service rechaza admin como role inicial a propósito.
func seedAdmin(repo identity.Repository, adminID string, log logger.Logger) {
	ctx := context.Background()

	if _, err := repo.GetActor(ctx, adminID); err != nil {
		now := time.Now()
		a := identity.Actor{
			ID:        adminID,
			FullName:  "bootstrap admin",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.CreateActor(ctx, a); err != nil {
			if log != nil {
				log.Error("bootstrap admin create failed", map[string]any{"error": err.Error()})
			}
			return
		}
	}

	if err := repo.GrantRole(ctx, adminID, identity.RoleAdmin); err != nil && log != nil {
		log.Error("bootstrap admin grant failed", map[string]any{"error": err.Error()})
	}
}
