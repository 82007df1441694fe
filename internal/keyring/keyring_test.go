package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSecrets(t *testing.T) {
	tests := []struct {
		name  string
		set   func(string) error
		get   func() (string, error)
		del   func() error
		value string
	}{
		{
			name:  "connection string",
			set:   SetConnectionString,
			get:   GetConnectionString,
			del:   DeleteConnectionString,
			value: "postgres://testuser@localhost:5432/lifeos?sslmode=disable",
		},
		{
			name:  "api token",
			set:   SetAPIToken,
			get:   GetAPIToken,
			del:   DeleteAPIToken,
			value: "tok_123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gokeyring.MockInit()

			if _, err := tt.get(); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get on empty keyring error = %v, want %v", err, ErrNotFound)
			}
			if err := tt.set(""); err == nil {
				t.Error("set with empty value should fail")
			}
			if err := tt.set(tt.value); err != nil {
				t.Fatalf("set failed: %v", err)
			}
			got, err := tt.get()
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if got != tt.value {
				t.Errorf("get = %q, want %q", got, tt.value)
			}
			if err := tt.del(); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if err := tt.del(); !errors.Is(err, ErrNotFound) {
				t.Errorf("second delete error = %v, want %v", err, ErrNotFound)
			}
		})
	}
}

func TestSecretsAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	if err := SetAPIToken("tok"); err != nil {
		t.Fatal(err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("connection string should be unset, got %v", err)
	}
}

func TestIsAvailableWithMock(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("mock keyring should be available")
	}
}
