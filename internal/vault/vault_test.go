package vault

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"nutri-go/internal/nutri"
)

// vaultContract runs the behaviour every nutri.Vault implementation shares.
func vaultContract(t *testing.T, newVault func(t *testing.T) nutri.Vault) {
	t.Run("put and get content", func(t *testing.T) {
		tests := []struct {
			name     string
			checksum string
			content  string
		}{
			{"small", "abc123", "hello world"},
			{"empty", "empty", ""},
			{"large", "large", strings.Repeat("x", 10000)},
		}
		v := newVault(t)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := v.PutContent(tt.checksum, strings.NewReader(tt.content), int64(len(tt.content))); err != nil {
					t.Fatalf("PutContent() error = %v", err)
				}
				var buf bytes.Buffer
				if err := v.GetContent(tt.checksum, &buf); err != nil {
					t.Fatalf("GetContent() error = %v", err)
				}
				if buf.String() != tt.content {
					t.Errorf("GetContent() = %d bytes, want %d", buf.Len(), len(tt.content))
				}
			})
		}
	})

	t.Run("put content is idempotent", func(t *testing.T) {
		v := newVault(t)
		for i := range 2 {
			if err := v.PutContent("same", strings.NewReader("data"), 4); err != nil {
				t.Fatalf("PutContent() call %d error = %v", i+1, err)
			}
		}
		var buf bytes.Buffer
		if err := v.GetContent("same", &buf); err != nil {
			t.Fatalf("GetContent() error = %v", err)
		}
		if buf.String() != "data" {
			t.Errorf("GetContent() = %q, want %q", buf.String(), "data")
		}
	})

	t.Run("content size mismatch", func(t *testing.T) {
		v := newVault(t)
		if err := v.PutContent("short", strings.NewReader("abc"), 10); err == nil {
			t.Error("PutContent() expected size mismatch error")
		}
	})

	t.Run("content not found", func(t *testing.T) {
		v := newVault(t)
		err := v.GetContent("missing", &bytes.Buffer{})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetContent() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("metadata round trip with version", func(t *testing.T) {
		v := newVault(t)

		version, err := v.GetMetadataVersion("host-1", "db")
		if err != nil {
			t.Fatalf("GetMetadataVersion() error = %v", err)
		}
		if version != 0 {
			t.Errorf("GetMetadataVersion() before put = %d, want 0", version)
		}

		if err := v.PutMetadata("host-1", "db", strings.NewReader("v1"), 2, 3); err != nil {
			t.Fatalf("PutMetadata() error = %v", err)
		}
		if err := v.PutMetadata("host-1", "db", strings.NewReader("v2!"), 3, 7); err != nil {
			t.Fatalf("PutMetadata() overwrite error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetMetadata("host-1", "db", &buf); err != nil {
			t.Fatalf("GetMetadata() error = %v", err)
		}
		if buf.String() != "v2!" {
			t.Errorf("GetMetadata() = %q, want %q", buf.String(), "v2!")
		}

		version, err = v.GetMetadataVersion("host-1", "db")
		if err != nil {
			t.Fatalf("GetMetadataVersion() error = %v", err)
		}
		if version != 7 {
			t.Errorf("GetMetadataVersion() = %d, want 7", version)
		}

		other, err := v.GetMetadataVersion("host-2", "db")
		if err != nil {
			t.Fatalf("GetMetadataVersion() other host error = %v", err)
		}
		if other != 0 {
			t.Errorf("GetMetadataVersion() other host = %d, want 0", other)
		}
	})

	t.Run("metadata not found", func(t *testing.T) {
		v := newVault(t)
		err := v.GetMetadata("host-1", "db", &bytes.Buffer{})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetMetadata() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("validate setup", func(t *testing.T) {
		if err := newVault(t).ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}

func TestMemoryVault(t *testing.T) {
	vaultContract(t, func(t *testing.T) nutri.Vault {
		return NewMemoryVault("test-vault")
	})
}

func TestFileSystemVault(t *testing.T) {
	vaultContract(t, func(t *testing.T) nutri.Vault {
		v, err := NewFileSystemVault("test-fs", t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		return v
	})
}

func TestS3Vault(t *testing.T) {
	vaultContract(t, func(t *testing.T) nutri.Vault {
		fake := newFakeS3("meals")
		return newS3Vault("test-s3", "meals", "nutri", fake, fake)
	})
}
