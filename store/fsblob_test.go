package store

import (
	"bytes"
	"context"
	"testing"
)

func TestFSBlobStoreRoundTrip(t *testing.T) {
	s, err := NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBlobStore() error = %v", err)
	}
	ctx := context.Background()

	data := []byte("age,income\n30,50000\n")
	if err := s.Put(ctx, "datasets/job-1.csv", data); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "datasets/job-1.csv")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}

	if _, err := s.Get(ctx, "datasets/missing.csv"); err == nil {
		t.Error("Get() of a missing blob should fail")
	}
}

func TestFSBlobStoreRejectsEscapingPaths(t *testing.T) {
	s, err := NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBlobStore() error = %v", err)
	}
	ctx := context.Background()

	for _, path := range []string{"../outside.txt", "/etc/passwd", "a/../../b"} {
		if err := s.Put(ctx, path, []byte("x")); err == nil {
			t.Errorf("Put(%q) should have been rejected", path)
		}
	}
}

func TestMemoryBlobStore(t *testing.T) {
	s := NewMemoryBlobStore()
	ctx := context.Background()

	if err := s.Put(ctx, "models/m1.onnx", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := s.Get(ctx, "models/m1.onnx")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got[0] = 9
	again, _ := s.Get(ctx, "models/m1.onnx")
	if again[0] != 1 {
		t.Error("mutating a returned blob changed stored state")
	}

	if _, err := s.Get(ctx, "nope"); err == nil {
		t.Error("Get() of a missing blob should fail")
	}
}
