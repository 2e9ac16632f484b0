package client

import (
	"net/http"
	"time"
)

// Config selects and configures a Service implementation
type Config struct {
	// UseRealAPI forces the HTTP implementation even without a base URL
	// (APIBaseURL then defaults to the local server).
	UseRealAPI bool

	// APIBaseURL points at the REST API. A non-empty value selects the
	// HTTP implementation.
	APIBaseURL string

	// Credentials persists {user, token} between runs. Nil keeps
	// credentials in memory only.
	Credentials CredentialStore

	// HTTPClient overrides the default client for the HTTP
	// implementation.
	HTTPClient *http.Client

	// MockSeed pre-populates the mock store.
	MockSeed []Mail

	// MockLatency simulates network delay in the mock implementation.
	MockLatency time.Duration
}

const defaultBaseURL = "http://localhost:8080"

// New builds the Service selected by cfg. The selection is a pure
// function of the config: the same config always yields the same kind
// of service, and nothing is cached between calls.
func New(cfg Config) Service {
	if cfg.UseRealAPI || cfg.APIBaseURL != "" {
		baseURL := cfg.APIBaseURL
		if baseURL == "" {
			baseURL = defaultBaseURL
		}
		return NewHTTPService(baseURL, cfg.HTTPClient, cfg.Credentials)
	}
	return NewMockService(NewMemoryStore(cfg.MockSeed), cfg.MockLatency)
}
