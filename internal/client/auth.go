package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
)

type authResponse struct {
	User  domain.Profile `json:"user"`
	Token string         `json:"token"`
}

type apiError struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a token and stores the session.
func (s *Store) Login(email, password string) Result {
	var resp authResponse
	if err := s.doJSON(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp); err != nil {
		return fail(err.Error())
	}

	s.mu.Lock()
	s.user = &resp.User
	s.token = resp.Token
	s.mu.Unlock()
	s.notify()
	return ok()
}

// Register creates an account and stores the resulting session.
func (s *Store) Register(name, email, password string) Result {
	var resp authResponse
	if err := s.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &resp); err != nil {
		return fail(err.Error())
	}

	s.mu.Lock()
	s.user = &resp.User
	s.token = resp.Token
	s.mu.Unlock()
	s.notify()
	return ok()
}

// Logout drops the session and closes the socket.
func (s *Store) Logout() {
	s.Disconnect()

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.messages = nil
	s.conversations = nil
	s.online = make(map[string]bool)
	s.typing = make(map[string]bool)
	s.activeConversation = ""
	s.mu.Unlock()
	s.notify()
}

// LoadProfile refreshes the authenticated profile. An auth failure clears
// the stored session, mirroring a token that expired while away.
func (s *Store) LoadProfile() Result {
	if !s.IsAuthenticated() {
		return fail("not authenticated")
	}

	var profile domain.Profile
	if err := s.doJSON(http.MethodGet, "/api/auth/profile", nil, &profile); err != nil {
		s.mu.Lock()
		s.user = nil
		s.token = ""
		s.mu.Unlock()
		s.notify()
		return fail(err.Error())
	}

	s.mu.Lock()
	s.user = &profile
	s.mu.Unlock()
	s.notify()
	return ok()
}

// UpdateProfile pushes profile edits and mirrors the confirmed result.
func (s *Store) UpdateProfile(name, email, bio string) Result {
	var profile domain.Profile
	if err := s.doJSON(http.MethodPut, "/api/auth/profile", map[string]string{
		"name":  name,
		"email": email,
		"bio":   bio,
	}, &profile); err != nil {
		return fail(err.Error())
	}

	s.mu.Lock()
	s.user = &profile
	s.mu.Unlock()
	s.notify()
	return ok()
}

// doJSON performs a REST call with the bearer token attached and decodes the
// JSON response. Server errors surface as the body's message field.
func (s *Store) doJSON(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := s.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
