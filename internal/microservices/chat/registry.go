package chat

import (
	"log/slog"
	"sync"

	"chathub/internal/microservices/http-api/service"

	"github.com/google/uuid"
)

// Identity is what the registry resolves from a bearer credential,
// once, at connect time. A revoked token stays valid until disconnect -
// there is no per-message re-validation.
type Identity struct {
	UserID        string
	Username      string
	Role          string
	Level         int
	Authenticated bool
}

// CredentialVerifier is the auth collaborator the registry calls into.
type CredentialVerifier interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

// Registry binds each live connection to an identity and tracks every
// open connection process-wide.
type Registry struct {
	verifier CredentialVerifier
	clients  map[string]*Client
	mu       sync.RWMutex
	logger   *slog.Logger
}

func NewRegistry(verifier CredentialVerifier) *Registry {
	return &Registry{
		verifier: verifier,
		clients:  make(map[string]*Client),
		logger:   slog.Default(),
	}
}

// Authenticate resolves a token into an Identity. A missing or invalid
// token degrades to an anonymous guest identity rather than refusing
// the connection - read-only access is still useful, and operations
// that need identity reject later at the router.
func (r *Registry) Authenticate(token string) Identity {
	if token == "" {
		return r.anonymous()
	}

	claims, err := r.verifier.ValidateToken(token)
	if err != nil {
		r.logger.Warn("connection_auth_failed", "error", err.Error())
		return r.anonymous()
	}

	return Identity{
		UserID:        claims.UserID,
		Username:      claims.Username,
		Role:          claims.Role,
		Level:         claims.Level,
		Authenticated: true,
	}
}

func (r *Registry) anonymous() Identity {
	return Identity{
		Username: "guest_" + uuid.NewString()[:8],
		Role:     "guest",
	}
}

// AddConnection registers a live connection.
func (r *Registry) AddConnection(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
	r.logger.Info("client_added",
		"client_id", c.ID,
		"username", c.Identity.Username,
		"authenticated", c.Identity.Authenticated,
	)
}

// RemoveConnection drops a connection after disconnect.
func (r *Registry) RemoveConnection(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c.ID)
	r.logger.Info("client_removed",
		"client_id", c.ID,
	)
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAllConnections closes every live connection, for shutdown.
func (r *Registry) CloseAllConnections() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.Close()
		r.logger.Info("client_connection_closed",
			"client_id", id,
		)
	}
	r.clients = make(map[string]*Client)
}
