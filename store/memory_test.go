package store

import (
	"context"
	"testing"

	"github.com/rushteam/shoprec/core"
)

func TestMemoryStoreGetSet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := s.Set(ctx, "k1", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("expected v1, got %s", got)
	}

	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k1"); !core.IsStoreNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	err := s.BatchSet(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	})
	if err != nil {
		t.Fatalf("batch set: %v", err)
	}

	got, err := s.BatchGet(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("batch get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("unexpected values: %v", got)
	}
	if _, ok := got["c"]; ok {
		t.Fatal("missing key should not appear in batch result")
	}
}

func TestMemoryStoreZRange(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	for _, m := range []struct {
		member string
		score  float64
	}{
		{"p1", 10},
		{"p2", 30},
		{"p3", 20},
		{"p4", 20},
	} {
		if err := s.ZAdd(ctx, "hot", m.score, m.member); err != nil {
			t.Fatalf("zadd: %v", err)
		}
	}

	got, err := s.ZRange(ctx, "hot", 0, -1)
	if err != nil {
		t.Fatalf("zrange: %v", err)
	}
	// score 降序，同分按 member 升序
	want := []string{"p2", "p3", "p4", "p1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	top2, err := s.ZRange(ctx, "hot", 0, 1)
	if err != nil {
		t.Fatalf("zrange top2: %v", err)
	}
	if len(top2) != 2 || top2[0] != "p2" || top2[1] != "p3" {
		t.Fatalf("expected [p2 p3], got %v", top2)
	}

	empty, err := s.ZRange(ctx, "nope", 0, -1)
	if err != nil {
		t.Fatalf("zrange missing key: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty, got %v", empty)
	}
}
