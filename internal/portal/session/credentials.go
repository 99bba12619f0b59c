package session

// CredentialSource adapts a Store to the api client's token needs: read the
// current bearer credential, purge it when corrupt or rejected.
type CredentialSource struct {
	store Store
}

// NewCredentialSource wraps the given store.
func NewCredentialSource(store Store) *CredentialSource {
	return &CredentialSource{store: store}
}

// Token returns the stored credential, or "" when no session exists.
func (c *CredentialSource) Token() string {
	st, err := c.store.Load()
	if err != nil {
		return ""
	}
	return st.Token
}

// Purge drops the credential but keeps the identity.
func (c *CredentialSource) Purge() {
	_ = c.store.ClearToken()
}
