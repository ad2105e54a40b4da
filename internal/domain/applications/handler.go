package applications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption-api/internal/domain/authz"
	"pet-adoption-api/internal/domain/identity"
	"pet-adoption-api/internal/domain/pets"
	"pet-adoption-api/internal/domain/shelters"
	"pet-adoption-api/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service, shs *shelters.Service, ids *identity.Service) {
	r.Post("/pets/{petID}/applications", createApplicationHandler(svc, petsSvc, shs, ids))
	r.Get("/pets/{petID}/applications", listByPetHandler(svc, petsSvc, shs, ids))
	r.Get("/me/applications", myApplicationsHandler(svc))
	r.Route("/applications/{appID}", func(ar chi.Router) {
		ar.Get("/", getApplicationHandler(svc, shs, ids))
		ar.Post("/decision", decideApplicationHandler(svc, shs, ids))
	})
}

type createApplicationRequest struct {
	Message      string `json:"message"`
	HomeType     string `json:"home_type"`
	HasChildren  bool   `json:"has_children"`
	HasOtherPets bool   `json:"has_other_pets"`
	Experience   string `json:"experience"`
}

type decisionRequest struct {
	Decision string `json:"decision"` // approve | reject
	Reason   string `json:"reason"`   // solo para reject
}

type applicationResponse struct {
	ID            string     `json:"id"`
	PetID         string     `json:"pet_id"`
	ShelterID     string     `json:"shelter_id"`
	AdopterUserID string     `json:"adopter_user_id"`
	Message       string     `json:"message"`
	HomeType      string     `json:"home_type"`
	HasChildren   bool       `json:"has_children"`
	HasOtherPets  bool       `json:"has_other_pets"`
	Experience    string     `json:"experience"`
	Status        Status     `json:"status"`
	RejectReason  string     `json:"reject_reason,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	Created       time.Time  `json:"created_at"`
	Updated       time.Time  `json:"updated_at"`
}

type decisionResponse struct {
	Application      applicationResponse   `json:"application"`
	RejectedSiblings []applicationResponse `json:"rejected_siblings,omitempty"`
}

// CreateApplication godoc
// @Summary Solicita la adopción de una mascota
// @Description Solo adopters, y solo sobre mascotas aprobadas y
// @Description disponibles. Una pending por (mascota, adopter).
// @Tags applications
// @Accept json
// @Produce json
// @Success 201 {object} applicationResponse
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "pending application already exists"
// @Router /pets/{petID}/applications [post]
func createApplicationHandler(svc *Service, petsSvc *pets.Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := petsSvc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		sh, err := shs.GetByID(r.Context(), p.ShelterID)
		if err != nil {
			http.Error(w, "shelter not found", http.StatusNotFound)
			return
		}

		roles, _ := ids.Roles(r.Context(), claims.UserID)
		dec := authz.Evaluate(authz.Input{
			ActorID: claims.UserID,
			Roles:   roles,
			Action:  authz.ActionApplicationCreate,
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
			return
		}

		var req createApplicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), CreateInput{
			PetID:         p.ID,
			ShelterID:     p.ShelterID,
			AdopterUserID: claims.UserID,
			Message:       req.Message,
			HomeType:      req.HomeType,
			HasChildren:   req.HasChildren,
			HasOtherPets:  req.HasOtherPets,
			Experience:    req.Experience,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrAlreadyApplied):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toApplicationResponse(a))
	}
}

func listByPetHandler(svc *Service, petsSvc *pets.Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := petsSvc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		sh, err := shs.GetByID(r.Context(), p.ShelterID)
		if err != nil {
			http.Error(w, "shelter not found", http.StatusNotFound)
			return
		}

		// listar las solicitudes de una mascota es decidir sobre ellas:
		// misma política que la decisión
		roles, _ := ids.Roles(r.Context(), claims.UserID)
		dec := authz.Evaluate(authz.Input{
			ActorID: claims.UserID,
			Roles:   roles,
			Action:  authz.ActionApplicationDecide,
			Resource: authz.Resource{
				Kind:        authz.KindApplication,
				OwnerUserID: sh.OwnerUserID,
			},
		})
		if !dec.Allowed {
			http.Error(w, string(dec.Reason), http.StatusForbidden)
			return
		}

		all, err := svc.ListByPet(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]applicationResponse, 0, len(all))
		for _, a := range all {
			out = append(out, toApplicationResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func myApplicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		all, err := svc.ListByAdopter(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]applicationResponse, 0, len(all))
		for _, a := range all {
			out = append(out, toApplicationResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getApplicationHandler(svc *Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _, ok := authorizeApplication(w, r, svc, shs, ids, authz.ActionApplicationRead)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

// DecideApplication godoc
// @Summary Decide una solicitud (approve o reject)
// @Description Approve es atómico: la solicitud pasa a approved, la
// @Description mascota a adopted y las hermanas pending a rejected, o
// @Description nada. Ante una carrera exactamente una aprobación gana.
// @Tags applications
// @Accept json
// @Produce json
// @Success 200 {object} decisionResponse
// @Failure 409 {string} string "status conflict"
// @Failure 503 {string} string "resource busy, retry"
// @Router /applications/{appID}/decision [post]
func decideApplicationHandler(svc *Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _, ok := authorizeApplication(w, r, svc, shs, ids, authz.ActionApplicationDecide)
		if !ok {
			return
		}

		var req decisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		switch strings.TrimSpace(req.Decision) {
		case "approve":
			res, err := svc.Approve(r.Context(), a.ID)
			if err != nil {
				writeDecideError(w, err)
				return
			}
			siblings := make([]applicationResponse, 0, len(res.RejectedSiblings))
			for _, sib := range res.RejectedSiblings {
				siblings = append(siblings, toApplicationResponse(sib))
			}
			writeJSON(w, http.StatusOK, decisionResponse{
				Application:      toApplicationResponse(res.Application),
				RejectedSiblings: siblings,
			})

		case "reject":
			rejected, err := svc.Reject(r.Context(), a.ID, req.Reason)
			if err != nil {
				writeDecideError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, decisionResponse{
				Application: toApplicationResponse(rejected),
			})

		default:
			http.Error(w, "decision must be approve or reject", http.StatusBadRequest)
		}
	}
}

// authorizeApplication carga la application y evalúa la política con
// su snapshot (autor + owner del shelter).
func authorizeApplication(w http.ResponseWriter, r *http.Request, svc *Service, shs *shelters.Service, ids *identity.Service, action authz.Action) (Application, authz.Decision, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Application{}, authz.Decision{}, false
	}

	a, err := svc.GetByID(r.Context(), chi.URLParam(r, "appID"))
	if err != nil {
		http.Error(w, "application not found", http.StatusNotFound)
		return Application{}, authz.Decision{}, false
	}

	owner := ""
	if o, err := shs.OwnerOf(r.Context(), a.ShelterID); err == nil {
		owner = o
	}

	roles, _ := ids.Roles(r.Context(), claims.UserID)
	dec := authz.Evaluate(authz.Input{
		ActorID: claims.UserID,
		Roles:   roles,
		Action:  action,
		Resource: authz.Resource{
			Kind:          authz.KindApplication,
			OwnerUserID:   owner,
			AdopterUserID: a.AdopterUserID,
		},
	})
	if !dec.Allowed {
		// para el que no puede ni leerla, la application no existe
		if action == authz.ActionApplicationRead {
			http.Error(w, "application not found", http.StatusNotFound)
		} else {
			http.Error(w, string(dec.Reason), http.StatusForbidden)
		}
		return Application{}, authz.Decision{}, false
	}

	return a, dec, true
}

func writeDecideError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnavailable):
		// transitorio: que el cliente reintente
		w.Header().Set("Retry-After", "1")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "application not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toApplicationResponse(a Application) applicationResponse {
	return applicationResponse{
		ID:            a.ID,
		PetID:         a.PetID,
		ShelterID:     a.ShelterID,
		AdopterUserID: a.AdopterUserID,
		Message:       a.Message,
		HomeType:      a.HomeType,
		HasChildren:   a.HasChildren,
		HasOtherPets:  a.HasOtherPets,
		Experience:    a.Experience,
		Status:        a.Status,
		RejectReason:  a.RejectReason,
		ReviewedAt:    a.ReviewedAt,
		Created:       a.CreatedAt,
		Updated:       a.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
