package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
	"golang.org/x/crypto/bcrypt"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	tableRenamed bool
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.DB.Exec(`DELETE FROM users`).Error
	})
	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if s.tableRenamed {
			s.tableRenamed = false
			return ctx, s.tc.DB.Exec(`ALTER TABLE users_unavailable RENAME TO users`).Error
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^a casino server is running$`, s.aCasinoServerIsRunning)
	sc.Step(`^a user "([^"]*)" with password "([^"]*)" and email "([^"]*)" exists in the database$`, s.aUserExistsInTheDatabase)
	sc.Step(`^the users table is unavailable$`, s.theUsersTableIsUnavailable)

	// Request steps
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAs)
	sc.Step(`^I request "([^"]*)"$`, s.iRequest)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the credentials should be validated by "([^"]*)"$`, s.theCredentialsShouldBeValidatedBy)
	sc.Step(`^the user data should contain "([^"]*)" = "([^"]*)"$`, s.theUserDataShouldContain)
	sc.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)
	sc.Step(`^the configured authenticators should be "([^"]*)"$`, s.theConfiguredAuthenticatorsShouldBe)
}

func (s *StepsContext) aCasinoServerIsRunning() error {
	return s.do(http.MethodGet, "/status", nil)
}

func (s *StepsContext) aUserExistsInTheDatabase(username, password, email string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	return s.tc.DB.Exec(`
		INSERT INTO users (username, encrypted_password, mail) VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET encrypted_password = EXCLUDED.encrypted_password, mail = EXCLUDED.mail
	`, username, string(hash), email).Error
}

func (s *StepsContext) theUsersTableIsUnavailable() error {
	if err := s.tc.DB.Exec(`ALTER TABLE users RENAME TO users_unavailable`).Error; err != nil {
		return err
	}
	s.tableRenamed = true
	return nil
}

func (s *StepsContext) iLogInAs(username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	return s.do(http.MethodPost, "/login", strings.NewReader(form.Encode()))
}

func (s *StepsContext) iRequest(path string) error {
	return s.do(http.MethodGet, path, nil)
}

func (s *StepsContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, s.tc.ServerURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) result() (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return result, nil
}

func (s *StepsContext) theCredentialsShouldBeValidatedBy(name string) error {
	result, err := s.result()
	if err != nil {
		return err
	}
	if result["authenticator"] != name {
		return fmt.Errorf("expected authenticator %q, got %v", name, result["authenticator"])
	}
	return nil
}

func (s *StepsContext) theUserDataShouldContain(key, value string) error {
	result, err := s.result()
	if err != nil {
		return err
	}
	data, _ := result["user_data"].(map[string]interface{})
	if fmt.Sprint(data[key]) != value {
		return fmt.Errorf("expected user_data[%s] = %q, got %v", key, value, data[key])
	}
	return nil
}

func (s *StepsContext) theResponseShouldContain(substr string) error {
	if !strings.Contains(string(s.responseBody), substr) {
		return fmt.Errorf("expected response to contain %q, got %s", substr, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theConfiguredAuthenticatorsShouldBe(names string) error {
	var body struct {
		Authenticators []string `json:"authenticators"`
	}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if got := strings.Join(body.Authenticators, ", "); got != names {
		return fmt.Errorf("expected authenticators %q, got %q", names, got)
	}
	return nil
}
