// Package contacts abstracts the device address book the recipient import
// pulls from.
package contacts

import (
	"context"
	"encoding/json"
	"os"
)

type Contact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Source is the contacts collaborator: an access grant followed by a fetch.
type Source interface {
	RequestAccess(ctx context.Context) (bool, error)
	Fetch(ctx context.Context) ([]Contact, error)
}

// FileSource reads contacts from a JSON file. Access is granted when a path
// is configured and denied otherwise, mirroring the permission dialog.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource { return &FileSource{path: path} }

func (s *FileSource) RequestAccess(ctx context.Context) (bool, error) {
	if s.path == "" {
		return false, nil
	}
	_, err := os.Stat(s.path)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileSource) Fetch(ctx context.Context) ([]Contact, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var out []Contact
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
