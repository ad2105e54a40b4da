package shelters

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption-api/internal/domain/authz"
	"pet-adoption-api/internal/domain/identity"
	"pet-adoption-api/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, ids *identity.Service) {
	r.Route("/shelters", func(sr chi.Router) {
		sr.Post("/", createShelterHandler(svc, ids))
		sr.Get("/", listSheltersHandler(svc))
		sr.Get("/{shelterID}", getShelterHandler(svc))
		sr.Patch("/{shelterID}", updateShelterHandler(svc, ids))
	})
	r.Get("/me/shelter", myShelterHandler(svc))
	r.Post("/admin/shelters/{shelterID}/verify", verifyShelterHandler(svc, ids))
}

type createShelterRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
}

type updateShelterRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Website     *string `json:"website"`
}

type verifyShelterRequest struct {
	Verified *bool `json:"verified"`
}

type shelterResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Website     string    `json:"website"`
	Verified    bool      `json:"verified"`
	Created     time.Time `json:"created_at"`
	Updated     time.Time `json:"updated_at"`
}

func createShelterHandler(svc *Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// crear un shelter requiere el role shelter (o admin)
		roles, _ := ids.Roles(r.Context(), claims.UserID)
		if !hasRole(roles, identity.RoleShelter) && !hasRole(roles, identity.RoleAdmin) {
			http.Error(w, string(authz.ReasonRoleInsufficient), http.StatusForbidden)
			return
		}

		var req createShelterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sh, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Address:     req.Address,
			City:        req.City,
			State:       req.State,
			Phone:       req.Phone,
			Email:       req.Email,
			Website:     req.Website,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrAlreadyExists):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toShelterResponse(sh))
	}
}

func listSheltersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]shelterResponse, 0, len(all))
		for _, sh := range all {
			out = append(out, toShelterResponse(sh))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := svc.GetByID(r.Context(), chi.URLParam(r, "shelterID"))
		if err != nil {
			http.Error(w, "shelter not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toShelterResponse(sh))
	}
}

func myShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sh, err := svc.GetByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "shelter not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toShelterResponse(sh))
	}
}

func updateShelterHandler(svc *Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sh, err := svc.GetByID(r.Context(), chi.URLParam(r, "shelterID"))
		if err != nil {
			http.Error(w, "shelter not found", http.StatusNotFound)
			return
		}

		roles, _ := ids.Roles(r.Context(), claims.UserID)
		dec := authz.Evaluate(authz.Input{
			ActorID: claims.UserID,
			Roles:   roles,
			Action:  authz.ActionShelterUpdate,
			Resource: authz.Resource{
				Kind:            authz.KindShelter,
				OwnerUserID:     sh.OwnerUserID,
				ShelterVerified: sh.Verified,
			},
		})
		if !dec.Allowed {
			http.Error(w, string(dec.Reason), http.StatusForbidden)
			return
		}

		var req updateShelterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), sh.ID, UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			Address:     req.Address,
			City:        req.City,
			State:       req.State,
			Phone:       req.Phone,
			Email:       req.Email,
			Website:     req.Website,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toShelterResponse(updated))
	}
}

func verifyShelterHandler(svc *Service, ids *identity.Service) http.HandlerFunc {
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
			Action:  authz.ActionShelterVerify,
		})
		if !dec.Allowed {
			http.Error(w, string(dec.Reason), http.StatusForbidden)
			return
		}

		// body opcional: sin body (o sin campo) verifica; {"verified":false}
		// desverifica
		verified := true
		var req verifyShelterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Verified != nil {
			verified = *req.Verified
		}

		sh, err := svc.SetVerified(r.Context(), chi.URLParam(r, "shelterID"), verified)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
				http.Error(w, "shelter not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toShelterResponse(sh))
	}
}

func hasRole(roles []identity.Role, want identity.Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func toShelterResponse(sh Shelter) shelterResponse {
	return shelterResponse{
		ID:          sh.ID,
		OwnerUserID: sh.OwnerUserID,
		Name:        sh.Name,
		Description: sh.Description,
		Address:     sh.Address,
		City:        sh.City,
		State:       sh.State,
		Phone:       sh.Phone,
		Email:       sh.Email,
		Website:     sh.Website,
		Verified:    sh.Verified,
		Created:     sh.CreatedAt,
		Updated:     sh.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
