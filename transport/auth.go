package transport

import (
	"fmt"
	"net/http"
)

// Authentication types.
const (
	AuthBearer = "bearer"
	AuthBasic  = "basic"
	AuthAPIKey = "api_key"
)

// AuthConfig configures credentials attached to every request.
type AuthConfig struct {
	// Type is one of "bearer", "basic" or "api_key".
	Type string `yaml:"type" mapstructure:"type"`
	// Token is the bearer token.
	Token string `yaml:"token" mapstructure:"token"`
	// Username and Password are the basic auth credentials.
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	// Key is the API key value.
	Key string `yaml:"key" mapstructure:"key"`
	// In places the API key in the "header" (default) or the "query".
	In string `yaml:"in" mapstructure:"in"`
	// Name is the header or query parameter name. Defaults to "X-API-Key".
	Name string `yaml:"name" mapstructure:"name"`
	// Apply replaces the built-in behavior when set.
	Apply func(*http.Request) `yaml:"-" mapstructure:"-"`
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent in the named header.
func APIKeyAuth(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyQueryAuth creates an API key auth config sent as a query parameter.
func APIKeyQueryAuth(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth creates an auth config that runs fn on every request.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{Apply: fn}
}

// Validate checks the auth type and its required fields.
func (a *AuthConfig) Validate() error {
	if a == nil || a.Apply != nil {
		return nil
	}
	switch a.Type {
	case "":
		return nil
	case AuthBearer:
		if a.Token == "" {
			return fmt.Errorf("transport/auth: bearer auth requires a token")
		}
	case AuthBasic:
		if a.Username == "" {
			return fmt.Errorf("transport/auth: basic auth requires a username")
		}
	case AuthAPIKey:
		if a.Key == "" {
			return fmt.Errorf("transport/auth: api_key auth requires a key")
		}
		if a.In != "" && a.In != "header" && a.In != "query" {
			return fmt.Errorf("transport/auth: api_key location must be header or query, got %q", a.In)
		}
	default:
		return fmt.Errorf("transport/auth: unknown type %q", a.Type)
	}
	return nil
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	if a.Apply != nil {
		a.Apply(req)
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		if a.In == "query" {
			q := req.URL.Query()
			q.Set(name, a.Key)
			req.URL.RawQuery = q.Encode()
			return
		}
		req.Header.Set(name, a.Key)
	}
}
