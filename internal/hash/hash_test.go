package hash

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSHA256Hasher_HashFile(t *testing.T) {
	tmpDir := t.TempDir()
	hasher := NewSHA256Hasher()

	testFile := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("hello world"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	got, err := hasher.HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	// Known SHA-256 of "hello world".
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Errorf("HashFile = %s, want %s", got, want)
	}

	if hasher.HashBytes([]byte("hello world")) != want {
		t.Error("HashBytes should agree with HashFile for the same content")
	}
}

func TestXXH3Hasher(t *testing.T) {
	tmpDir := t.TempDir()
	hasher := NewXXH3Hasher()

	file1 := filepath.Join(tmpDir, "file1.txt")
	file2 := filepath.Join(tmpDir, "file2.txt")
	if err := os.WriteFile(file1, []byte("content A"), 0644); err != nil {
		t.Fatalf("failed to write file1: %v", err)
	}
	if err := os.WriteFile(file2, []byte("content B"), 0644); err != nil {
		t.Fatalf("failed to write file2: %v", err)
	}

	hash1, err := hasher.HashFile(file1)
	if err != nil {
		t.Fatalf("HashFile failed for file1: %v", err)
	}
	hash2, err := hasher.HashFile(file2)
	if err != nil {
		t.Fatalf("HashFile failed for file2: %v", err)
	}

	if hash1 == "" || hash2 == "" {
		t.Fatal("HashFile returned empty hash")
	}
	if hash1 == hash2 {
		t.Error("different content should produce different hashes")
	}
	if hasher.HashBytes([]byte("content A")) != hash1 {
		t.Error("HashBytes should agree with HashFile for the same content")
	}
}

func TestHashFile_MissingFile(t *testing.T) {
	for _, hasher := range []Hasher{NewXXH3Hasher(), NewSHA256Hasher()} {
		if _, err := hasher.HashFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
			t.Errorf("%s: expected error for missing file", hasher.Name())
		}
	}
}

func TestFakeHasher(t *testing.T) {
	hasher := NewFakeHasher()
	hasher.SetHash("/some/path", "abc123")

	if got, _ := hasher.HashFile("/some/path"); got != "abc123" {
		t.Errorf("HashFile = %s, want abc123", got)
	}
	if got, _ := hasher.HashFile("/other/path"); got != "fakehash" {
		t.Errorf("HashFile = %s, want fakehash", got)
	}
}
