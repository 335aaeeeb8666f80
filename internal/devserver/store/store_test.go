package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zhouzirui/procure-chat/backend/internal/devserver/store"
	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
)

func TestUpsertCreatesMissingSession(t *testing.T) {
	s := store.New()
	ctx := context.Background()

	doc := &form.Document{}
	doc.GeneralInformation.Title = "Roof repair"
	record := s.Upsert(ctx, "u1", doc)

	if record.ID != "u1" || record.FormData.GeneralInformation.Title != "Roof repair" {
		t.Fatalf("unexpected record %+v", record)
	}

	if _, err := s.AppendMessage(ctx, "u1", "hi", "hello"); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}
}

func TestStoredFormIsIsolatedFromCaller(t *testing.T) {
	s := store.New()
	ctx := context.Background()

	doc := &form.Document{}
	doc.GeneralInformation.Title = "original"
	s.Upsert(ctx, "u1", doc)

	// Mutating the caller's copy must not reach the store.
	doc.GeneralInformation.Title = "mutated"

	record, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if record.FormData.GeneralInformation.Title != "original" {
		t.Fatal("store shares memory with callers")
	}
}

func TestCreateRejectsEmptyID(t *testing.T) {
	s := store.New()

	if _, err := s.Create(context.Background(), ""); !errors.Is(err, store.ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}

func TestMessagesForUnknownSession(t *testing.T) {
	s := store.New()

	if _, err := s.Messages(context.Background(), "missing"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
