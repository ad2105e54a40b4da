package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption-api/internal/domain/authz"
	"pet-adoption-api/internal/domain/identity"
	"pet-adoption-api/internal/domain/shelters"
	"pet-adoption-api/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, shs *shelters.Service, ids *identity.Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, shs, ids))
		pr.Get("/", listPetsHandler(svc, shs, ids))
		pr.Get("/{petID}", getPetHandler(svc, shs, ids))
		pr.Patch("/{petID}", updatePetHandler(svc, shs, ids))
		pr.Post("/{petID}/publish", publishPetHandler(svc, shs, ids))
		pr.Post("/{petID}/withdraw", withdrawPetHandler(svc, shs, ids))
	})
	r.Post("/admin/pets/{petID}/approval", setApprovalHandler(svc, ids))
}

type createPetRequest struct {
	Name          string `json:"name"`
	Species       string `json:"species"`
	Breed         string `json:"breed"`
	Gender        string `json:"gender"`
	Size          string `json:"size"`
	Color         string `json:"color"`
	AgeYears      int    `json:"age_years"`
	AgeMonths     int    `json:"age_months"`
	Description   string `json:"description"`
	BehaviorNotes string `json:"behavior_notes"`
	MedicalInfo   string `json:"medical_info"`
	PhotoURL      string `json:"photo_url"`
}

type updatePetRequest struct {
	Name          *string `json:"name"`
	Breed         *string `json:"breed"`
	Gender        *string `json:"gender"`
	Size          *string `json:"size"`
	Color         *string `json:"color"`
	AgeYears      *int    `json:"age_years"`
	AgeMonths     *int    `json:"age_months"`
	Description   *string `json:"description"`
	BehaviorNotes *string `json:"behavior_notes"`
	MedicalInfo   *string `json:"medical_info"`
	PhotoURL      *string `json:"photo_url"`
}

type setApprovalRequest struct {
	Approved *bool `json:"approved"`
}

type petResponse struct {
	ID            string    `json:"id"`
	ShelterID     string    `json:"shelter_id"`
	Name          string    `json:"name"`
	Species       Species   `json:"species"`
	Breed         string    `json:"breed"`
	Gender        string    `json:"gender"`
	Size          string    `json:"size"`
	Color         string    `json:"color"`
	AgeYears      int       `json:"age_years"`
	AgeMonths     int       `json:"age_months"`
	Description   string    `json:"description"`
	BehaviorNotes string    `json:"behavior_notes"`
	MedicalInfo   string    `json:"medical_info"`
	PhotoURL      string    `json:"photo_url"`
	Approved      bool      `json:"approved"`
	Status        Status    `json:"status"`
	Created       time.Time `json:"created_at"`
	Updated       time.Time `json:"updated_at"`
}

// CreatePet godoc
// @Summary Registra una mascota bajo el shelter del actor
// @Tags pets
// @Accept json
// @Produce json
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid input"
// @Failure 403 {string} string "forbidden"
// @Router /pets [post]
func createPetHandler(svc *Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sh, err := shs.GetByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "shelter not found for actor", http.StatusNotFound)
			return
		}

		roles, _ := ids.Roles(r.Context(), claims.UserID)
		dec := authz.Evaluate(authz.Input{
			ActorID: claims.UserID,
			Roles:   roles,
			Action:  authz.ActionPetCreate,
			Resource: authz.Resource{
				Kind:            authz.KindPet,
				OwnerUserID:     sh.OwnerUserID,
				ShelterVerified: sh.Verified,
			},
		})
		if !dec.Allowed {
			http.Error(w, string(dec.Reason), http.StatusForbidden)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), sh.ID, CreateInput{
			Name:          req.Name,
			Species:       req.Species,
			Breed:         req.Breed,
			Gender:        req.Gender,
			Size:          req.Size,
			Color:         req.Color,
			AgeYears:      req.AgeYears,
			AgeMonths:     req.AgeMonths,
			Description:   req.Description,
			BehaviorNotes: req.BehaviorNotes,
			MedicalInfo:   req.MedicalInfo,
			PhotoURL:      req.PhotoURL,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// ListPets godoc
// @Summary Lista mascotas visibles para el actor
// @Description Anónimos y adopters ven solo aprobadas+disponibles; un
// @Description shelter ve además las suyas; admin ve todas. Filtros
// @Description opcionales por species y status.
// @Tags pets
// @Produce json
// @Param species query string false "dog|cat|rabbit|bird|other"
// @Param status query string false "unlisted|available|pending|adopted|withdrawn"
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		speciesFilter := strings.TrimSpace(r.URL.Query().Get("species"))
		statusFilter := strings.TrimSpace(r.URL.Query().Get("status"))

		actorID, roles := actorContext(r, ids)

		out := make([]petResponse, 0, len(all))
		for _, p := range all {
			if speciesFilter != "" && string(p.Species) != speciesFilter {
				continue
			}
			if statusFilter != "" && string(p.Status) != statusFilter {
				continue
			}
			// la visibilidad por mascota la decide la misma política
			// que protege el GET individual
			dec := authz.Evaluate(authz.Input{
				ActorID:  actorID,
				Roles:    roles,
				Action:   authz.ActionPetRead,
				Resource: petResource(p, ownerOf(r, shs, p.ShelterID), false),
			})
			if !dec.Allowed {
				continue
			}
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		actorID, roles := actorContext(r, ids)
		dec := authz.Evaluate(authz.Input{
			ActorID:  actorID,
			Roles:    roles,
			Action:   authz.ActionPetRead,
			Resource: petResource(p, ownerOf(r, shs, p.ShelterID), false),
		})
		if !dec.Allowed {
			// no filtrar existencia de mascotas no públicas
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func updatePetHandler(svc *Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _, _, ok := authorizePetAction(w, r, svc, shs, ids, authz.ActionPetUpdate)
		if !ok {
			return
		}

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), p.ID, UpdateProfileInput{
			Name:          req.Name,
			Breed:         req.Breed,
			Gender:        req.Gender,
			Size:          req.Size,
			Color:         req.Color,
			AgeYears:      req.AgeYears,
			AgeMonths:     req.AgeMonths,
			Description:   req.Description,
			BehaviorNotes: req.BehaviorNotes,
			MedicalInfo:   req.MedicalInfo,
			PhotoURL:      req.PhotoURL,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

// PublishPet godoc
// @Summary Publica la mascota (unlisted → available)
// @Description Requiere mascota aprobada por admin y shelter verificado.
// @Tags pets
// @Produce json
// @Success 200 {object} petResponse
// @Failure 403 {string} string "resource-state-invalid"
// @Failure 409 {string} string "status conflict"
// @Router /pets/{petID}/publish [post]
func publishPetHandler(svc *Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _, _, ok := authorizePetAction(w, r, svc, shs, ids, authz.ActionPetPublish)
		if !ok {
			return
		}

		updated, err := svc.Publish(r.Context(), p.ID)
		if err != nil {
			switch {
			case errors.Is(err, ErrConflict):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "pet not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

func withdrawPetHandler(svc *Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _, _, ok := authorizePetAction(w, r, svc, shs, ids, authz.ActionPetWithdraw)
		if !ok {
			return
		}

		updated, err := svc.Withdraw(r.Context(), p.ID)
		if err != nil {
			switch {
			case errors.Is(err, ErrConflict):
				// adopted es terminal: no hay vuelta atrás
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "pet not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

func setApprovalHandler(svc *Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		roles, _ := ids.Roles(r.Context(), claims.UserID)
		dec := authz.Evaluate(authz.Input{
			ActorID: claims.UserID,
			Roles:   roles,
			Action:  authz.ActionPetSetApproval,
		})
		if !dec.Allowed {
			http.Error(w, string(dec.Reason), http.StatusForbidden)
			return
		}

		approved := true
		var req setApprovalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Approved != nil {
			approved = *req.Approved
		}

		p, err := svc.SetApproval(r.Context(), chi.URLParam(r, "petID"), approved)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// authorizePetAction resuelve mascota + shelter + política para las
// acciones de escritura del shelter. Corta con el status que toque.
func authorizePetAction(w http.ResponseWriter, r *http.Request, svc *Service, shs *shelters.Service, ids *identity.Service, action authz.Action) (Pet, shelters.Shelter, authz.Decision, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Pet{}, shelters.Shelter{}, authz.Decision{}, false
	}

	p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
	if err != nil {
		http.Error(w, "pet not found", http.StatusNotFound)
		return Pet{}, shelters.Shelter{}, authz.Decision{}, false
	}

	sh, err := shs.GetByID(r.Context(), p.ShelterID)
	if err != nil {
		http.Error(w, "shelter not found", http.StatusNotFound)
		return Pet{}, shelters.Shelter{}, authz.Decision{}, false
	}

	roles, _ := ids.Roles(r.Context(), claims.UserID)
	dec := authz.Evaluate(authz.Input{
		ActorID: claims.UserID,
		Roles:   roles,
		Action:  action,
		Resource: authz.Resource{
			Kind:            authz.KindPet,
			OwnerUserID:     sh.OwnerUserID,
			PetApproved:     p.Approved,
			PetStatus:       string(p.Status),
			ShelterVerified: sh.Verified,
		},
	})
	if !dec.Allowed {
		http.Error(w, string(dec.Reason), http.StatusForbidden)
		return Pet{}, shelters.Shelter{}, authz.Decision{}, false
	}

	return p, sh, dec, true
}

func actorContext(r *http.Request, ids *identity.Service) (string, []identity.Role) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return "", nil
	}
	roles, err := ids.Roles(r.Context(), claims.UserID)
	if err != nil {
		return claims.UserID, nil
	}
	return claims.UserID, roles
}

func ownerOf(r *http.Request, shs *shelters.Service, shelterID string) string {
	owner, err := shs.OwnerOf(r.Context(), shelterID)
	if err != nil {
		return ""
	}
	return owner
}

func petResource(p Pet, ownerUserID string, shelterVerified bool) authz.Resource {
	return authz.Resource{
		Kind:            authz.KindPet,
		OwnerUserID:     ownerUserID,
		PetApproved:     p.Approved,
		PetStatus:       string(p.Status),
		ShelterVerified: shelterVerified,
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:            p.ID,
		ShelterID:     p.ShelterID,
		Name:          p.Name,
		Species:       p.Species,
		Breed:         p.Breed,
		Gender:        p.Gender,
		Size:          p.Size,
		Color:         p.Color,
		AgeYears:      p.AgeYears,
		AgeMonths:     p.AgeMonths,
		Description:   p.Description,
		BehaviorNotes: p.BehaviorNotes,
		MedicalInfo:   p.MedicalInfo,
		PhotoURL:      p.PhotoURL,
		Approved:      p.Approved,
		Status:        p.Status,
		Created:       p.CreatedAt,
		Updated:       p.UpdatedAt,
	}
}

// writeJSON se duplica por módulo en vez de ir a un paquete compartido:
// cada dominio responde con sus propios DTOs y nada más.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
