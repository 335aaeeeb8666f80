package formsync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
	"github.com/zhouzirui/procure-chat/backend/internal/model/session"
	"github.com/zhouzirui/procure-chat/backend/internal/service/formsync"
)

// fakeStore drives the engine without a network. It normalizes on update the
// way the real backend does.
type fakeStore struct {
	doc        form.Document
	fetchErr   error
	updateErr  error
	fetchCalls int
	updates    int
}

func (f *fakeStore) FetchForm(_ context.Context, _ string) (*form.Document, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.doc.Clone(), nil
}

func (f *fakeStore) UpdateForm(_ context.Context, _ string, doc *form.Document) (*session.Session, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates++
	saved := doc.Clone()
	_ = saved.Normalize()
	f.doc = *saved
	return &session.Session{ID: "s1", FormData: saved.Clone()}, nil
}

func storedDoc() form.Document {
	return form.Document{
		GeneralInformation: form.GeneralInformation{
			Title: "Roof repair",
			DetailedDescription: form.DetailedDescription{
				BusinessNeed:   "Leaking roof",
				ProjectScope:   "North wing",
				TypeOfContract: "internal",
			},
		},
		FinancialDetails: form.FinancialDetails{
			StartDate:      "2024-03-01",
			EndDate:        "2024-09-30",
			ExpectedAmount: "120000",
			Currency:       "EUR",
		},
	}
}

func TestPullIsNoOpBeforeBind(t *testing.T) {
	store := &fakeStore{doc: storedDoc()}
	engine := formsync.New(store)

	if err := engine.Pull(context.Background()); err != nil {
		t.Fatalf("Pull before bind must be a silent no-op, got %v", err)
	}
	if store.fetchCalls != 0 {
		t.Fatalf("expected no fetch, got %d", store.fetchCalls)
	}
}

func TestPullOverwritesBufferWholesale(t *testing.T) {
	store := &fakeStore{doc: storedDoc()}
	engine := formsync.New(store)
	engine.Bind("s1")

	// Simulate an unsaved local edit, then pull.
	if err := engine.Pull(context.Background()); err != nil {
		t.Fatalf("Pull err: %v", err)
	}
	if err := engine.SetField("title", "My unsaved draft"); err != nil {
		t.Fatalf("SetField err: %v", err)
	}
	if err := engine.Pull(context.Background()); err != nil {
		t.Fatalf("Pull err: %v", err)
	}

	got := engine.Snapshot()
	if got != storedDoc() {
		t.Fatalf("buffer must equal the pulled document exactly, got %+v", got)
	}
}

func TestPullFailureLeavesBufferUntouched(t *testing.T) {
	store := &fakeStore{doc: storedDoc()}
	engine := formsync.New(store)
	engine.Bind("s1")

	if err := engine.Pull(context.Background()); err != nil {
		t.Fatalf("Pull err: %v", err)
	}
	store.fetchErr = errors.New("backend down")

	err := engine.Pull(context.Background())
	var syncErr *formsync.SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected SyncError, got %v", err)
	}
	if engine.Snapshot() != storedDoc() {
		t.Fatal("buffer changed on failed pull")
	}
}

func TestPushConfirmsThroughPull(t *testing.T) {
	store := &fakeStore{doc: storedDoc()}
	engine := formsync.New(store)
	engine.Bind("s1")

	doc := storedDoc()
	doc.GeneralInformation.Title = "Roof replacement"
	doc.FinancialDetails.StartDate = "05.12.2024"

	if err := engine.Push(context.Background(), &doc); err != nil {
		t.Fatalf("Push err: %v", err)
	}

	got := engine.Snapshot()
	if got.GeneralInformation.Title != "Roof replacement" {
		t.Fatalf("push not visible after confirming pull: %q", got.GeneralInformation.Title)
	}
	// The buffer holds the server-normalized form, not the raw input.
	if got.FinancialDetails.StartDate != "2024-12-05" {
		t.Fatalf("expected normalized date from confirming pull, got %q", got.FinancialDetails.StartDate)
	}
	if store.fetchCalls != 1 {
		t.Fatalf("expected exactly one confirming fetch, got %d", store.fetchCalls)
	}
}

func TestPushFailureLeavesBufferByteForByteUnchanged(t *testing.T) {
	store := &fakeStore{doc: storedDoc()}
	engine := formsync.New(store)
	engine.Bind("s1")
	if err := engine.Pull(context.Background()); err != nil {
		t.Fatalf("Pull err: %v", err)
	}
	before := engine.Snapshot()

	store.updateErr = errors.New("write refused")
	doc := storedDoc()
	doc.GeneralInformation.Title = "Another title"

	err := engine.Push(context.Background(), &doc)
	var syncErr *formsync.SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected SyncError, got %v", err)
	}
	if engine.Snapshot() != before {
		t.Fatal("buffer changed on failed push")
	}
}

func TestPushValidationFailureBlocksNetwork(t *testing.T) {
	store := &fakeStore{doc: storedDoc()}
	engine := formsync.New(store)
	engine.Bind("s1")

	doc := storedDoc()
	doc.GeneralInformation.DetailedDescription.TypeOfContract = form.ContractTypeExternal
	// source_type and contract_limit left empty.

	err := engine.Push(context.Background(), &doc)
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.updates != 0 || store.fetchCalls != 0 {
		t.Fatal("validation failure must not reach the network")
	}
}

func TestPushIsNoOpBeforeBind(t *testing.T) {
	store := &fakeStore{doc: storedDoc()}
	engine := formsync.New(store)

	doc := storedDoc()
	if err := engine.Push(context.Background(), &doc); err != nil {
		t.Fatalf("Push before bind must be a silent no-op, got %v", err)
	}
	if store.updates != 0 {
		t.Fatal("no update expected before bind")
	}
}

func TestSetFieldNormalizesDatesOnIngress(t *testing.T) {
	engine := formsync.New(&fakeStore{})
	engine.Bind("s1")

	if err := engine.SetField("start_date", "05.12.2024"); err != nil {
		t.Fatalf("SetField err: %v", err)
	}
	if got := engine.Snapshot().FinancialDetails.StartDate; got != "2024-12-05" {
		t.Fatalf("expected normalized date, got %q", got)
	}

	if err := engine.SetField("end_date", "whenever"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestSetFieldRejectsUnknownPathAndUnboundEngine(t *testing.T) {
	engine := formsync.New(&fakeStore{})

	if err := engine.SetField("title", "x"); !errors.Is(err, formsync.ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}

	engine.Bind("s1")
	if err := engine.SetField("no_such_field", "x"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}
