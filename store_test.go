package folio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "inbox.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	// Reopening runs the migrations again.
	if err := s.ensureSchema(); err != nil {
		t.Fatalf("ensureSchema is not idempotent: %v", err)
	}
}

func TestSaveMessageAssignsIDAndTime(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC()
	m, err := s.SaveMessage(ctx, Message{Name: "Ana", Email: "ana@example.com", Subject: "Hola", Body: "¿Sesión de fotos?"})
	if err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if m.ID == "" {
		t.Error("expected an id")
	}
	if m.CreatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("CreatedAt = %v, want about now", m.CreatedAt)
	}

	msgs, err := s.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.ID != m.ID || got.Name != "Ana" || got.Email != "ana@example.com" || got.Subject != "Hola" || got.Body != "¿Sesión de fotos?" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, m.CreatedAt)
	}
}

func TestListMessagesNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, subject := range []string{"primero", "tercero", "segundo"} {
		offset := []time.Duration{0, 2 * time.Hour, time.Hour}[i]
		if _, err := s.SaveMessage(ctx, Message{Name: "n", Email: "e@x.com", Subject: subject, Body: "b", CreatedAt: base.Add(offset)}); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	msgs, err := s.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	want := []string{"tercero", "segundo", "primero"}
	for i, m := range msgs {
		if m.Subject != want[i] {
			t.Errorf("msgs[%d] = %q, want %q", i, m.Subject, want[i])
		}
	}

	n, err := s.CountMessages(ctx)
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if n != 3 {
		t.Errorf("CountMessages = %d, want 3", n)
	}
}

func TestDeleteMessage(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	m, err := s.SaveMessage(ctx, Message{Name: "n", Email: "e@x.com", Subject: "s", Body: "b"})
	if err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if err := s.DeleteMessage(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	msgs, _ := s.ListMessages(ctx)
	if len(msgs) != 0 {
		t.Errorf("expected empty inbox, got %d", len(msgs))
	}
	if err := s.DeleteMessage(ctx, m.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("second delete: got %v, want ErrMessageNotFound", err)
	}
}
