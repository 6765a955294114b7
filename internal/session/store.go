package session

// Fixed storage keys for the credential pair
const (
	accessKey  = "auth_access_token"
	refreshKey = "auth_refresh_token"
)

// Storage is the persistent key/value backend holding the token pair
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store holds the current access/refresh credential pair.
// It is the only cross-component shared mutable state; every outgoing
// request re-reads the token at send time rather than caching it.
type Store struct {
	storage Storage
}

// NewStore creates a session store on top of the given storage
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// AccessToken returns the stored access token, or "" if logged out
func (s *Store) AccessToken() string {
	token, err := s.storage.Get(accessKey)
	if err != nil {
		return ""
	}
	return token
}

// RefreshToken returns the stored refresh token, or "" if absent
func (s *Store) RefreshToken() string {
	token, err := s.storage.Get(refreshKey)
	if err != nil {
		return ""
	}
	return token
}

// SetTokens atomically replaces both tokens
func (s *Store) SetTokens(access, refresh string) error {
	if err := s.storage.Set(accessKey, access); err != nil {
		return err
	}
	return s.storage.Set(refreshKey, refresh)
}

// Clear removes both tokens
func (s *Store) Clear() {
	s.storage.Delete(accessKey)
	s.storage.Delete(refreshKey)
}

// IsAuthenticated reports whether an access token is present.
// No validity or expiry check happens locally; an expired token still
// reads as authenticated until a request fails with 401.
func (s *Store) IsAuthenticated() bool {
	return s.AccessToken() != ""
}
