package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption-api/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Registro post-login: crea el actor con su role inicial
	r.Post("/register", registerHandler(svc))
	r.Get("/me", meHandler(svc))

	// Administración de roles (admin-only)
	r.Route("/admin/actors/{actorID}/roles", func(ar chi.Router) {
		ar.Post("/", grantRoleHandler(svc))
		ar.Delete("/{role}", revokeRoleHandler(svc))
	})
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type actorResponse struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Location string    `json:"location"`
	Roles    []Role    `json:"roles"`
	Created  time.Time `json:"created_at"`
	Updated  time.Time `json:"updated_at"`
}

type grantRoleRequest struct {
	Role string `json:"role"`
}

func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Register(r.Context(), RegisterInput{
			ActorID:     claims.UserID,
			FullName:    req.FullName,
			Email:       claims.Email,
			Phone:       req.Phone,
			Location:    req.Location,
			InitialRole: claims.InitialRole,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		roles, _ := svc.Roles(r.Context(), a.ID)
		writeJSON(w, http.StatusCreated, toActorResponse(a, roles))
	}
}

func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetActor(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "actor not found", http.StatusNotFound)
			return
		}

		roles, _ := svc.Roles(r.Context(), a.ID)
		writeJSON(w, http.StatusOK, toActorResponse(a, roles))
	}
}

func grantRoleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, svc) {
			return
		}

		var req grantRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		target := chi.URLParam(r, "actorID")
		if err := svc.Grant(r.Context(), target, Role(strings.TrimSpace(req.Role))); err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "actor not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		a, _ := svc.GetActor(r.Context(), target)
		roles, _ := svc.Roles(r.Context(), target)
		writeJSON(w, http.StatusOK, toActorResponse(a, roles))
	}
}

func revokeRoleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r, svc) {
			return
		}

		target := chi.URLParam(r, "actorID")
		role := Role(strings.TrimSpace(chi.URLParam(r, "role")))
		if err := svc.Revoke(r.Context(), target, role); err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "actor not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// requireAdmin corta con 401/403 si el actor no es admin. El check es
// directo contra el role store: este módulo está DEBAJO del evaluador
// de políticas (authz depende de identity, no al revés).
func requireAdmin(w http.ResponseWriter, r *http.Request, svc *Service) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}

	isAdmin, err := svc.HasRole(r.Context(), claims.UserID, RoleAdmin)
	if err != nil || !isAdmin {
		http.Error(w, "role-insufficient", http.StatusForbidden)
		return false
	}
	return true
}

func toActorResponse(a Actor, roles []Role) actorResponse {
	if roles == nil {
		roles = []Role{}
	}
	return actorResponse{
		ID:       a.ID,
		FullName: a.FullName,
		Email:    a.Email,
		Phone:    a.Phone,
		Location: a.Location,
		Roles:    roles,
		Created:  a.CreatedAt,
		Updated:  a.UpdatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (ver comentario en pets/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
