package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/campuscoders/campus-cli/pkg/config"
)

// TestCredentialsIsValid validates the snapshot validity check
func TestCredentialsIsValid(t *testing.T) {
	testCases := []struct {
		creds  Credentials
		expect bool
		name   string
	}{
		{Credentials{UserID: "u1", Username: "alice"}, true, "complete"},
		{Credentials{Username: "alice"}, false, "missing id"},
		{Credentials{UserID: "u1"}, false, "missing username"},
		{Credentials{}, false, "empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.creds.IsValid(); got != tc.expect {
				t.Errorf("Expected IsValid=%v, got %v", tc.expect, got)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	if !(&Credentials{Role: "admin"}).IsAdmin() {
		t.Error("admin role should report IsAdmin")
	}
	if (&Credentials{Role: "user"}).IsAdmin() {
		t.Error("user role should not report IsAdmin")
	}
}

// TestSaveLoadDelete round-trips a snapshot through a file
func TestSaveLoadDelete(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), "session.json")}

	creds, err := f.Load()
	if err != nil || creds != nil {
		t.Fatalf("Expected nil snapshot before save, got %v, %v", creds, err)
	}

	saved := &Credentials{
		UserID:           "64f0c2",
		Username:         "alice",
		ProfileCompleted: true,
		LoggedInAt:       time.Now().UTC().Truncate(time.Second),
	}
	if err := f.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *saved {
		t.Errorf("Expected %+v, got %+v", saved, loaded)
	}

	if err := f.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := f.Delete(); err != nil {
		t.Errorf("Deleting a missing snapshot should succeed, got %v", err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), "session.json")}
	if err := os.WriteFile(f.Path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Load(); err == nil {
		t.Error("Expected error for corrupt snapshot")
	}
}

func TestDefaultUsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := config.Init(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatal(err)
	}

	f := Default()
	if err := f.Save(&Credentials{UserID: "u1", Username: "bob"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); err != nil {
		t.Errorf("Expected snapshot in config dir: %v", err)
	}
	if err := f.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}
