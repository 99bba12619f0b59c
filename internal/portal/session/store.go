// Package session holds the persisted identity/credential pair for the
// current actor and the role guard that gates every protected view.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
)

// State is the in-memory view of a persisted session.
type State struct {
	Identity models.Identity
	Token    string
}

// Store persists the two session keys: the serialized identity and the
// bearer credential. Implementations must fail closed: corrupt state is
// wiped and reported as ErrNoSession, never returned partially parsed.
type Store interface {
	Load() (*State, error)
	Save(st *State) error
	// ClearToken drops only the credential, keeping the identity. Used when
	// the backend rejects the token and a re-login is required.
	ClearToken() error
	Clear() error
}

// fileState is the on-disk layout: two opaque keys, mirroring the storage
// contract of the portal. The identity is kept as its raw serialized form.
type fileState struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

// FileStore keeps the session in a single 0600 JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and parses the persisted session. A missing file, an empty
// identity key, or unparsable identity JSON all yield ErrNoSession; in the
// corrupt cases the file is removed so the next load starts clean.
func (s *FileStore) Load() (*State, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, e.ErrNoSession
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var fs fileState
	if err := json.Unmarshal(raw, &fs); err != nil {
		_ = s.Clear()
		return nil, e.ErrNoSession
	}
	if strings.TrimSpace(fs.User) == "" {
		return nil, e.ErrNoSession
	}

	var id models.Identity
	if err := json.Unmarshal([]byte(fs.User), &id); err != nil {
		_ = s.Clear()
		return nil, e.ErrNoSession
	}
	id.Role = id.Role.Normalize()
	if id.ID == 0 || !id.Role.Valid() {
		_ = s.Clear()
		return nil, e.ErrNoSession
	}

	return &State{Identity: id, Token: fs.Token}, nil
}

// Save writes both keys atomically via a rename.
func (s *FileStore) Save(st *State) error {
	user, err := json.Marshal(st.Identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	raw, err := json.Marshal(fileState{User: string(user), Token: st.Token})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// ClearToken rewrites the file with an empty credential.
func (s *FileStore) ClearToken() error {
	st, err := s.Load()
	if err != nil {
		return nil
	}
	st.Token = ""
	return s.Save(st)
}

// Clear removes the persisted session entirely.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
