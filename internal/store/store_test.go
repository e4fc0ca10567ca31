package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSign(id, lang, key string) *CustomSign {
	return &CustomSign{
		ID:             id,
		Language:       lang,
		Key:            key,
		Value:          "Test",
		Type:           "word",
		BaseConfidence: 0.7,
	}
}

func TestSignCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	cs := testSign("sign-1", "asl", "custom_test")
	if err := s.Signs().Create(cs); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if cs.CreatedAt.IsZero() {
		t.Error("Create should stamp CreatedAt")
	}

	got, err := s.Signs().GetByID("sign-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Language != "asl" || got.Key != "custom_test" || got.Value != "Test" {
		t.Errorf("got %+v, want the created sign back", got)
	}
	if got.BaseConfidence != 0.7 {
		t.Errorf("BaseConfidence = %v, want 0.7", got.BaseConfidence)
	}
}

func TestSignGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Signs().GetByID("absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSignListByLanguage(t *testing.T) {
	s := newTestStore(t)

	for _, cs := range []*CustomSign{
		testSign("sign-1", "asl", "custom_b"),
		testSign("sign-2", "asl", "custom_a"),
		testSign("sign-3", "lsf", "custom_c"),
	} {
		if err := s.Signs().Create(cs); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	signs, err := s.Signs().ListByLanguage("asl")
	if err != nil {
		t.Fatalf("ListByLanguage failed: %v", err)
	}
	if len(signs) != 2 {
		t.Fatalf("got %d signs, want 2", len(signs))
	}
	// Ordered by key.
	if signs[0].Key != "custom_a" || signs[1].Key != "custom_b" {
		t.Errorf("keys = %q, %q, want custom_a, custom_b", signs[0].Key, signs[1].Key)
	}

	empty, err := s.Signs().ListByLanguage("bsl")
	if err != nil {
		t.Fatalf("ListByLanguage failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d bsl signs, want 0", len(empty))
	}
}

func TestSignDelete(t *testing.T) {
	s := newTestStore(t)

	if err := s.Signs().Create(testSign("sign-1", "asl", "custom_test")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Signs().Delete("sign-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Signs().GetByID("sign-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error after delete = %v, want ErrNotFound", err)
	}

	if err := s.Signs().Delete("sign-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestSignUniquePerLanguage(t *testing.T) {
	s := newTestStore(t)

	if err := s.Signs().Create(testSign("sign-1", "asl", "custom_test")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Same key in the same language violates the unique constraint.
	if err := s.Signs().Create(testSign("sign-2", "asl", "custom_test")); err == nil {
		t.Error("duplicate (language, key) should fail")
	}

	// Same key in another language is fine.
	if err := s.Signs().Create(testSign("sign-3", "lsf", "custom_test")); err != nil {
		t.Errorf("same key in another language failed: %v", err)
	}
}
