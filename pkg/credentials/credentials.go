package credentials

import (
	"errors"
	"os"
	"time"

	"github.com/campuscoders/campus-cli/pkg/config"
	json "github.com/json-iterator/go"
)

// Credentials is the locally saved snapshot of who is logged in. The session
// itself lives in the cookie jar; this only remembers what the last
// successful check reported.
type Credentials struct {
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	Role             string    `json:"role,omitempty"`
	ProfileCompleted bool      `json:"profile_completed"`
	LoggedInAt       time.Time `json:"logged_in_at"`
}

// IsAdmin reports whether the snapshot belongs to an admin account.
func (c *Credentials) IsAdmin() bool {
	return c.Role == "admin"
}

// IsValid checks if the snapshot names a user
func (c *Credentials) IsValid() bool {
	return c.UserID != "" && c.Username != ""
}

// File is a snapshot stored at Path.
type File struct {
	Path string
}

// Default returns the snapshot file inside the config directory.
func Default() *File {
	return &File{Path: config.GetCredentialsPath()}
}

// Load returns nil with no error when nothing is saved yet.
func (f *File) Load() (*Credentials, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// Save writes the snapshot with owner-only permissions.
func (f *File) Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0600)
}

// Delete removes the snapshot. A missing file is not an error.
func (f *File) Delete() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
