package messages

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption-api/internal/domain/applications"
	"pet-adoption-api/internal/domain/authz"
	"pet-adoption-api/internal/domain/identity"
	"pet-adoption-api/internal/domain/shelters"
	"pet-adoption-api/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, apps *applications.Service, shs *shelters.Service, ids *identity.Service) {
	r.Route("/applications/{appID}/messages", func(mr chi.Router) {
		mr.Post("/", postMessageHandler(svc, apps, shs, ids))
		mr.Get("/", listMessagesHandler(svc, apps, shs, ids))
	})
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	SenderUserID  string    `json:"sender_user_id"`
	Content       string    `json:"content"`
	Seq           int64     `json:"seq"`
	Created       time.Time `json:"created_at"`
}

func postMessageHandler(svc *Service, apps *applications.Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, senderID, ok := authorizeThread(w, r, apps, shs, ids, authz.ActionMessageSend)
		if !ok {
			return
		}

		var req postMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Post(r.Context(), a.ID, senderID, req.Content)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toMessageResponse(m))
	}
}

func listMessagesHandler(svc *Service, apps *applications.Service, shs *shelters.Service, ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _, ok := authorizeThread(w, r, apps, shs, ids, authz.ActionMessageRead)
		if !ok {
			return
		}

		all, err := svc.ListByApplication(r.Context(), a.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]messageResponse, 0, len(all))
		for _, m := range all {
			out = append(out, toMessageResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// authorizeThread: el hilo de mensajes hereda la visibilidad de su
// application (adopter autor o shelter dueño; terceros afuera). El
// estado de la application no cierra el hilo: se puede conversar
// después de decidida.
func authorizeThread(w http.ResponseWriter, r *http.Request, apps *applications.Service, shs *shelters.Service, ids *identity.Service, action authz.Action) (applications.Application, string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return applications.Application{}, "", false
	}

	a, err := apps.GetByID(r.Context(), chi.URLParam(r, "appID"))
	if err != nil {
		http.Error(w, "application not found", http.StatusNotFound)
		return applications.Application{}, "", false
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
		http.Error(w, string(dec.Reason), http.StatusForbidden)
		return applications.Application{}, "", false
	}

	return a, claims.UserID, true
}

func toMessageResponse(m Message) messageResponse {
	return messageResponse{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		SenderUserID:  m.SenderUserID,
		Content:       m.Content,
		Seq:           m.Seq,
		Created:       m.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
