package client_test

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/procure-chat/backend/internal/client"
	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
)

func newTestClient(t *testing.T, handler http.Handler) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, 5*time.Second)
}

func TestResolveIdentifierIsIdempotent(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		sum := md5.Sum([]byte("acme-rfp"))
		id, _ := uuid.FromBytes(sum[:])
		json.NewEncoder(w).Encode(map[string]string{"uuid": id.String()})
	}))

	ctx := context.Background()
	first, err := c.ResolveIdentifier(ctx, "acme-rfp")
	if err != nil {
		t.Fatalf("ResolveIdentifier err: %v", err)
	}
	second, err := c.ResolveIdentifier(ctx, "acme-rfp")
	if err != nil {
		t.Fatalf("ResolveIdentifier err: %v", err)
	}

	if first == "" || first != second {
		t.Fatalf("expected stable identifier, got %q and %q", first, second)
	}
	if calls != 2 {
		t.Fatalf("expected 2 remote calls, got %d", calls)
	}
}

func TestResolveIdentifierEmptyNameSkipsNetwork(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty name")
	}))

	if _, err := c.ResolveIdentifier(context.Background(), "   "); !errors.Is(err, client.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestAPIErrorCarriesDetailVerbatim(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Session abc does not exist"})
	}))

	_, err := c.FetchForm(context.Background(), "abc")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("unexpected status %d", apiErr.Status)
	}
	if apiErr.Error() != "Session abc does not exist" {
		t.Fatalf("expected detail verbatim, got %q", apiErr.Error())
	}
}

func TestAPIErrorFallsBackToGenericMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.FetchForm(context.Background(), "abc")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Error() != "backend returned status 500" {
		t.Fatalf("unexpected fallback message %q", apiErr.Error())
	}
}

func TestFetchFormDecodesDocument(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/get_session_data/abc" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"session_id": "abc",
			"form_data": map[string]any{
				"general_information": map[string]any{
					"title": "Roof repair",
					"detailed_description": map[string]any{
						"business_need":    "Leaking roof",
						"project_scope":    "North wing",
						"type_of_contract": "internal",
					},
				},
				"financial_details": map[string]any{
					"start_date":      "2024-03-01",
					"end_date":        "2024-09-30",
					"expected_amount": "120000",
					"currency":        "EUR",
				},
			},
		})
	}))

	doc, err := c.FetchForm(context.Background(), "abc")
	if err != nil {
		t.Fatalf("FetchForm err: %v", err)
	}
	if doc.GeneralInformation.Title != "Roof repair" {
		t.Fatalf("unexpected title %q", doc.GeneralInformation.Title)
	}
	if doc.FinancialDetails.StartDate != "2024-03-01" {
		t.Fatalf("unexpected start date %q", doc.FinancialDetails.StartDate)
	}
}

func TestCreateSessionAcceptsBodylessResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sessions/create_session" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	created, err := c.CreateSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CreateSession must accept a bare 2xx, got: %v", err)
	}
	if created.ID != "u1" {
		t.Fatalf("expected the requested session id back, got %q", created.ID)
	}
}

func TestCreateSessionRejectsTruncatedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session_id": "u1"`))
	}))

	if _, err := c.CreateSession(context.Background(), "u1"); err == nil {
		t.Fatal("a truncated response body must still fail")
	}
}

func TestSendMessagePostsSessionAndBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/message" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("session_id") != "abc" {
			t.Fatalf("missing session_id query, got %q", r.URL.Query().Get("session_id"))
		}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message != "hello" {
			t.Fatalf("unexpected body: %v %q", err, payload.Message)
		}
		json.NewEncoder(w).Encode(map[string]any{"response": "hi there"})
	}))

	reply, err := c.SendMessage(context.Background(), "abc", "hello")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if reply.Response != "hi there" {
		t.Fatalf("unexpected reply %q", reply.Response)
	}
}

func TestUpdateFormSendsFullDocument(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/sessions/update_session_form/abc" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var doc form.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if doc.GeneralInformation.Title != "Roof repair" {
			t.Fatalf("unexpected title %q", doc.GeneralInformation.Title)
		}
		json.NewEncoder(w).Encode(map[string]any{"session_id": "abc", "form_data": doc})
	}))

	doc := &form.Document{}
	doc.GeneralInformation.Title = "Roof repair"
	saved, err := c.UpdateForm(context.Background(), "abc", doc)
	if err != nil {
		t.Fatalf("UpdateForm err: %v", err)
	}
	if saved.FormData == nil || saved.FormData.GeneralInformation.Title != "Roof repair" {
		t.Fatal("expected echoed document")
	}
}

func TestDeleteSessionAcceptsNoContent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := c.DeleteSession(context.Background(), "abc"); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}
}
