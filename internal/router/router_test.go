package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-adoption-api/internal/router"
)

func TestHTTP_EndToEnd_AdoptionFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:     nil, // modo dev
		BootstrapAdminID: "admin-1",
	}))
	defer ts.Close()

	adminID := "admin-1"
	ownerID := "owner-1"
	adopter1 := "adopter-1"
	adopter2 := "adopter-2"

	// 1) Registro: owner como shelter, adopters con el default
	register(t, ts.URL, ownerID, "shelter", "Refugio Sur")
	register(t, ts.URL, adopter1, "", "Ana")
	register(t, ts.URL, adopter2, "", "Bruno")

	// 2) Owner crea su shelter
	shelterID := createJSON(t, ts.URL, "POST", "/shelters", ownerID, map[string]any{
		"name":  "Refugio Sur",
		"email": "refugio@example.com",
	})

	// 3) Owner registra una mascota: nace unlisted
	petID := createJSON(t, ts.URL, "POST", "/pets", ownerID, map[string]any{
		"name":        "Milo",
		"species":     "dog",
		"description": "muy bueno",
	})

	// 4) El adopter no ve la mascota sin publicar
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, adopter1, "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for unlisted pet, got %d", st)
		}
	}

	// 5) Publicar sin aprobación de admin => denegado por estado
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/publish", ownerID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 publish before approval, got %d body=%s", st, string(body))
		}
	}

	// 6) Admin aprueba la mascota; sigue sin publicarse sola
	{
		st, body := doReq(t, ts.URL, "POST", "/admin/pets/"+petID+"/approval", adminID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 approval, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "unlisted" {
			t.Fatalf("expected approval to keep pet unlisted, got %s", resp.Status)
		}
	}

	// 7) Shelter sin verificar tampoco puede publicar
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/publish", ownerID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 publish before shelter verification, got %d", st)
		}
	}

	// 8) Admin verifica el shelter; ahora sí publica
	{
		st, _ := doReq(t, ts.URL, "POST", "/admin/shelters/"+shelterID+"/verify", adminID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 verify shelter, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/publish", ownerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 publish, got %d body=%s", st, string(body))
		}
	}

	// 9) Listing público anónimo la incluye
	{
		st, body := doReq(t, ts.URL, "GET", "/pets", "", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 anonymous listing, got %d", st)
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 {
			t.Fatalf("expected 1 public pet, got %d", len(list))
		}
	}

	// 10) Ambos adopters aplican; el duplicado es 409
	app1 := createJSON(t, ts.URL, "POST", "/pets/"+petID+"/applications", adopter1, map[string]any{
		"message": "quiero adoptarlo",
	})
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/applications", adopter1, "", map[string]any{
			"message": "de nuevo",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate application, got %d", st)
		}
	}
	app2 := createJSON(t, ts.URL, "POST", "/pets/"+petID+"/applications", adopter2, map[string]any{
		"message": "yo también",
	})

	// 11) Un adopter no lee la application de otro
	{
		st, _ := doReq(t, ts.URL, "GET", "/applications/"+app1, adopter2, "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 reading foreign application, got %d", st)
		}
	}

	// 12) Mensajes: adopter y shelter conversan; terceros afuera
	{
		st, _ := doReq(t, ts.URL, "POST", "/applications/"+app1+"/messages", adopter1, "", map[string]any{
			"content": "hola, tengo patio",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 adopter message, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/applications/"+app1+"/messages", ownerID, "", map[string]any{
			"content": "genial, coordinemos visita",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 shelter message, got %d", st)
		}
		st, body := doReq(t, ts.URL, "GET", "/applications/"+app1+"/messages", adopter1, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list messages, got %d", st)
		}
		var msgs []struct {
			SenderUserID string `json:"sender_user_id"`
		}
		_ = json.Unmarshal(body, &msgs)
		if len(msgs) != 2 || msgs[0].SenderUserID != adopter1 || msgs[1].SenderUserID != ownerID {
			t.Fatalf("expected ordered thread adopter→shelter, got %v", msgs)
		}
		st, _ = doReq(t, ts.URL, "POST", "/applications/"+app1+"/messages", adopter2, "", map[string]any{
			"content": "me meto",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 third-party message, got %d", st)
		}
	}

	// 13) El owner decide: aprueba app1; app2 cae en cascada
	{
		st, body := doReq(t, ts.URL, "POST", "/applications/"+app1+"/decision", ownerID, "", map[string]any{
			"decision": "approve",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
		var resp struct {
			Application struct {
				Status string `json:"status"`
			} `json:"application"`
			RejectedSiblings []struct {
				ID           string `json:"id"`
				RejectReason string `json:"reject_reason"`
			} `json:"rejected_siblings"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Application.Status != "approved" {
			t.Fatalf("expected approved, got %s", resp.Application.Status)
		}
		if len(resp.RejectedSiblings) != 1 || resp.RejectedSiblings[0].ID != app2 {
			t.Fatalf("expected app2 rejected in cascade, got %+v", resp.RejectedSiblings)
		}
		if resp.RejectedSiblings[0].RejectReason != "pet-no-longer-available" {
			t.Fatalf("expected cascade reason, got %q", resp.RejectedSiblings[0].RejectReason)
		}
	}

	// 14) La mascota quedó adopted
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, ownerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet, got %d", st)
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "adopted" {
			t.Fatalf("expected adopted, got %s", resp.Status)
		}
	}

	// 15) adopted es terminal: ni withdraw ni re-decisión
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/withdraw", ownerID, "", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 withdrawing adopted pet, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/applications/"+app1+"/decision", ownerID, "", map[string]any{
			"decision": "reject",
			"reason":   "cambio de idea",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 rejecting approved application, got %d", st)
		}
	}

	// 16) el hilo de mensajes sigue abierto después de la decisión
	{
		st, _ := doReq(t, ts.URL, "POST", "/applications/"+app1+"/messages", adopter1, "", map[string]any{
			"content": "gracias, cuándo la paso a buscar?",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 message after decision, got %d", st)
		}
	}
}

func TestHTTP_Withdraw_CascadesRejection(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:     nil,
		BootstrapAdminID: "admin-1",
	}))
	defer ts.Close()

	ownerID := "owner-1"
	adopterID := "adopter-1"

	register(t, ts.URL, ownerID, "shelter", "Refugio Norte")
	register(t, ts.URL, adopterID, "", "Carla")

	shelterID := createJSON(t, ts.URL, "POST", "/shelters", ownerID, map[string]any{
		"name":  "Refugio Norte",
		"email": "norte@example.com",
	})
	petID := createJSON(t, ts.URL, "POST", "/pets", ownerID, map[string]any{
		"name":        "Luna",
		"species":     "cat",
		"description": "tranquila",
	})

	mustStatus(t, ts.URL, "POST", "/admin/pets/"+petID+"/approval", "admin-1", nil, http.StatusOK)
	mustStatus(t, ts.URL, "POST", "/admin/shelters/"+shelterID+"/verify", "admin-1", nil, http.StatusOK)
	mustStatus(t, ts.URL, "POST", "/pets/"+petID+"/publish", ownerID, nil, http.StatusOK)

	appID := createJSON(t, ts.URL, "POST", "/pets/"+petID+"/applications", adopterID, map[string]any{
		"message": "la quiero adoptar",
	})

	// withdraw con pending: transiciona y cascadea
	mustStatus(t, ts.URL, "POST", "/pets/"+petID+"/withdraw", ownerID, nil, http.StatusOK)

	st, body := doReq(t, ts.URL, "GET", "/applications/"+appID, adopterID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get application, got %d", st)
	}
	var resp struct {
		Status       string `json:"status"`
		RejectReason string `json:"reject_reason"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Status != "rejected" || resp.RejectReason != "pet-no-longer-available" {
		t.Fatalf("expected cascaded rejection, got %s %q", resp.Status, resp.RejectReason)
	}

	// re-withdraw: no-op idempotente
	mustStatus(t, ts.URL, "POST", "/pets/"+petID+"/withdraw", ownerID, nil, http.StatusOK)

	// no se aplica sobre mascotas retiradas
	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petID+"/applications", adopterID, "", map[string]any{
		"message": "todavía la quiero",
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 applying to withdrawn pet, got %d", st)
	}
}

func TestHTTP_RoleAdministration(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:     nil,
		BootstrapAdminID: "admin-1",
	}))
	defer ts.Close()

	userID := "user-1"
	register(t, ts.URL, userID, "", "Diego")

	// un no-admin no administra roles
	st, _ := doReq(t, ts.URL, "POST", "/admin/actors/"+userID+"/roles", userID, "", map[string]any{
		"role": "shelter",
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 non-admin grant, got %d", st)
	}

	// admin otorga shelter
	st, body := doReq(t, ts.URL, "POST", "/admin/actors/"+userID+"/roles", "admin-1", "", map[string]any{
		"role": "shelter",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 grant, got %d body=%s", st, string(body))
	}
	var resp struct {
		Roles []string `json:"roles"`
	}
	_ = json.Unmarshal(body, &resp)
	if len(resp.Roles) != 2 {
		t.Fatalf("expected [adopter shelter], got %v", resp.Roles)
	}

	// admin revoca
	mustStatus(t, ts.URL, "DELETE", "/admin/actors/"+userID+"/roles/shelter", "admin-1", nil, http.StatusNoContent)

	// el registro jamás otorga admin
	st, _ = doReq(t, ts.URL, "POST", "/register", "wannabe-admin", "admin", map[string]any{
		"full_name": "Eve",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 registering with admin role, got %d", st)
	}
}

func TestHTTP_AdminPublish_UnverifiedShelterStaysUnlisted(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:     nil,
		BootstrapAdminID: "admin-1",
	}))
	defer ts.Close()

	ownerID := "owner-1"
	register(t, ts.URL, ownerID, "shelter", "Refugio Norte")

	shelterID := createJSON(t, ts.URL, "POST", "/shelters", ownerID, map[string]any{
		"name":  "Refugio Norte",
		"email": "norte@example.com",
	})
	petID := createJSON(t, ts.URL, "POST", "/pets", ownerID, map[string]any{
		"name":        "Luna",
		"species":     "cat",
		"description": "tranquila",
	})

	// admin aprueba, pero el shelter sigue sin verificar
	mustStatus(t, ts.URL, "POST", "/admin/pets/"+petID+"/approval", "admin-1", nil, http.StatusOK)

	// ni siquiera el admin publica sobre un shelter sin verificar
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/publish", "admin-1", "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 admin publish on unverified shelter, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, ownerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 owner read, got %d", st)
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "unlisted" {
			t.Fatalf("expected pet to stay unlisted, got %s", resp.Status)
		}
	}

	// verificado el shelter, el admin sí puede publicar por el dueño
	mustStatus(t, ts.URL, "POST", "/admin/shelters/"+shelterID+"/verify", "admin-1", nil, http.StatusOK)
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/publish", "admin-1", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 admin publish after verify, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "available" {
			t.Fatalf("expected available, got %s", resp.Status)
		}
	}
}

func register(t *testing.T, baseURL, userID, role, name string) {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/register", userID, role, map[string]any{
		"full_name": name,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register %s, got %d body=%s", userID, st, string(body))
	}
}

func createJSON(t *testing.T, baseURL, method, path, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, method, path, userID, "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 %s %s, got %d body=%s", method, path, st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("%s %s: missing id body=%s", method, path, string(body))
	}
	return resp.ID
}

func mustStatus(t *testing.T, baseURL, method, path, userID string, payload map[string]any, want int) {
	t.Helper()
	st, body := doReq(t, baseURL, method, path, userID, "", payload)
	if st != want {
		t.Fatalf("expected %d %s %s, got %d body=%s", want, method, path, st, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if debugRole != "" {
		req.Header.Set("X-Debug-Role", debugRole)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
