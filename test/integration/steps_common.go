package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/cucumber/godog"
)

// aliasPattern matches {name@version} placeholders in request paths.
var aliasPattern = regexp.MustCompile(`\{([^}]+)\}`)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc     *TestContext
	server *ServerInstance
	own    *ServerInstance // started for this scenario only

	response     *http.Response
	responseBody []byte
	authToken    string
	login        string

	// ids maps "name@version" to the id returned at registration
	ids map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:     tc,
		server: tc.Default,
		ids:    make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.ResetCatalog()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.own != nil {
			s.own.Stop()
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^a model registry server is running$`, s.aModelRegistryServerIsRunning)
	sc.Step(`^a model registry server with default page size (\d+) is running$`, s.aServerWithDefaultPageSize)
	sc.Step(`^I am signed in as "([^"]*)"$`, s.iAmSignedInAs)

	// Account steps
	sc.Step(`^I register an account "([^"]*)" with password "([^"]*)"$`, s.iRegisterAnAccount)
	sc.Step(`^I request a token for "([^"]*)" with password "([^"]*)"$`, s.iRequestAToken)
	sc.Step(`^I should receive a bearer token$`, s.iShouldReceiveABearerToken)

	// Catalog steps
	sc.Step(`^I register the model "([^"]*)" version "([^"]*)" of type "([^"]*)" in domain "([^"]*)"$`, s.iRegisterTheModel)
	sc.Step(`^I register the model "([^"]*)" version "([^"]*)" of type "([^"]*)" in domain "([^"]*)" tagged "([^"]*)"$`, s.iRegisterTheModelTagged)
	sc.Step(`^I promote "([^"]*)" to "([^"]*)"$`, s.iPromote)
	sc.Step(`^I record (\d+) concurrent accesses to "([^"]*)"$`, s.iRecordConcurrentAccesses)

	// Request steps
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, s.iSendARequest)
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, s.iSendARequestWithBody)
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)" without a token$`, s.iSendARequestWithoutAToken)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response field "([^"]*)" should be null$`, s.theResponseFieldShouldBeNull)
	sc.Step(`^the response should list models "([^"]*)"$`, s.theResponseShouldListModels)
	sc.Step(`^the response total should be (\d+)$`, s.theResponseTotalShouldBe)

	// Database steps
	sc.Step(`^the audit trail should contain "([^"]*)"$`, s.theAuditTrailShouldContain)
	sc.Step(`^the stored access count of "([^"]*)" should be (\d+)$`, s.theStoredAccessCountShouldBe)

	// Token steps (steps_jwt.go)
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)" with a token signed by another secret$`, s.iSendWithForeignToken)
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)" with an expired token$`, s.iSendWithExpiredToken)
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)" with a token for "([^"]*)"$`, s.iSendWithTokenFor)
}

// Background steps

func (s *StepsContext) aModelRegistryServerIsRunning() error {
	s.server = s.tc.Default
	return nil
}

func (s *StepsContext) aServerWithDefaultPageSize(size int) error {
	cfg := DefaultServerConfig()
	cfg.PageSizeDefault = size
	instance, err := StartServer(s.tc, cfg)
	if err != nil {
		return err
	}
	s.own = instance
	s.server = instance
	return nil
}

func (s *StepsContext) iAmSignedInAs(email string) error {
	if err := s.iRegisterAnAccount(email, "password"); err != nil {
		return err
	}
	if err := s.expectStatus(http.StatusOK); err != nil {
		return err
	}
	if err := s.iRequestAToken(email, "password"); err != nil {
		return err
	}
	return s.iShouldReceiveABearerToken()
}

// HTTP helpers

func (s *StepsContext) do(req *http.Request) error {
	var err error
	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) request(method, path, token string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.ServerURL+s.expand(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

// expand replaces {name@version} with the registered id.
func (s *StepsContext) expand(path string) string {
	return aliasPattern.ReplaceAllStringFunc(path, func(m string) string {
		if id, ok := s.ids[strings.Trim(m, "{}")]; ok {
			return id
		}
		return m
	})
}

func (s *StepsContext) expectStatus(code int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != code {
		return fmt.Errorf("expected status %d, got %d: %s", code, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

// Account steps

func (s *StepsContext) iRegisterAnAccount(email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	return s.request("POST", "/auth/register", "", body)
}

func (s *StepsContext) iRequestAToken(email, password string) error {
	form := url.Values{"username": {email}, "password": {password}}
	req, err := http.NewRequest("POST", s.server.ServerURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.login = email
	return s.do(req)
}

func (s *StepsContext) iShouldReceiveABearerToken() error {
	if err := s.expectStatus(http.StatusOK); err != nil {
		return err
	}
	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(s.responseBody, &token); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.TokenType != "bearer" || token.AccessToken == "" {
		return fmt.Errorf("unexpected token response: %s", string(s.responseBody))
	}
	s.authToken = token.AccessToken
	return nil
}

// Catalog steps

func (s *StepsContext) iRegisterTheModel(name, version, modelType, domain string) error {
	return s.iRegisterTheModelTagged(name, version, modelType, domain, "")
}

func (s *StepsContext) iRegisterTheModelTagged(name, version, modelType, domain, tags string) error {
	draft := map[string]interface{}{
		"model_name":    name,
		"display_name":  name + " " + version,
		"version":       version,
		"model_type":    modelType,
		"domain":        domain,
		"artifact_path": "s3://quarlets-models/" + name + "/" + version,
		"model_format":  "onnx",
		"checksum":      "sha256:" + name + version,
		"metrics":       map[string]float64{"auc": 0.9},
	}
	if tags != "" {
		draft["tags"] = tags
	}
	body, _ := json.Marshal(draft)
	if err := s.request("POST", "/models/register", s.authToken, body); err != nil {
		return err
	}
	if err := s.expectStatus(http.StatusCreated); err != nil {
		return err
	}

	var entry struct {
		ModelID string `json:"model_id"`
	}
	if err := json.Unmarshal(s.responseBody, &entry); err != nil {
		return err
	}
	s.ids[name+"@"+version] = entry.ModelID
	return nil
}

func (s *StepsContext) iPromote(alias, status string) error {
	path := fmt.Sprintf("/models/promote/{%s}?target_status=%s", alias, url.QueryEscape(status))
	if err := s.request("POST", path, s.authToken, nil); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *StepsContext) iRecordConcurrentAccesses(n int, alias string) error {
	req := func() (int, error) {
		r, err := http.NewRequest("POST", s.server.ServerURL+s.expand("/metrics/{"+alias+"}/access"), nil)
		if err != nil {
			return 0, err
		}
		r.Header.Set("Authorization", "Bearer "+s.authToken)
		resp, err := s.tc.HTTPClient.Do(r)
		if err != nil {
			return 0, err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return resp.StatusCode, nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := req()
			if err == nil && code != http.StatusOK {
				err = fmt.Errorf("access returned status %d", code)
			}
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	return <-errs
}

// Request steps

func (s *StepsContext) iSendARequest(method, path string) error {
	return s.request(method, path, s.authToken, nil)
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	return s.request(method, path, s.authToken, []byte(body.Content))
}

func (s *StepsContext) iSendARequestWithoutAToken(method, path string) error {
	return s.request(method, path, "", nil)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(code int) error {
	return s.expectStatus(code)
}

// field resolves a dotted path such as "error.message" or "models.0.status".
func (s *StepsContext) field(path string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(s.responseBody, &v); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	for _, part := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in %s", path, string(s.responseBody))
			}
			v = next
		case []interface{}:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %q", part, path)
			}
			v = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %q of %q", part, path)
		}
	}
	return v, nil
}

func (s *StepsContext) theResponseFieldShouldBe(path, expected string) error {
	v, err := s.field(path)
	if err != nil {
		return err
	}
	if got := fmt.Sprintf("%v", v); got != s.expand(expected) {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, got)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBeNull(path string) error {
	v, err := s.field(path)
	if err != nil {
		return err
	}
	if v != nil {
		return fmt.Errorf("expected %s to be null, got %v", path, v)
	}
	return nil
}

func (s *StepsContext) page() (names []string, total int64, err error) {
	var page struct {
		Models []struct {
			ModelName string `json:"model_name"`
			Version   string `json:"version"`
		} `json:"models"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(s.responseBody, &page); err != nil {
		return nil, 0, fmt.Errorf("failed to parse page: %w", err)
	}
	for _, m := range page.Models {
		names = append(names, m.ModelName+"@"+m.Version)
	}
	return names, page.Total, nil
}

func (s *StepsContext) theResponseShouldListModels(expected string) error {
	if err := s.expectStatus(http.StatusOK); err != nil {
		return err
	}
	names, _, err := s.page()
	if err != nil {
		return err
	}
	var want []string
	if expected != "" {
		want = strings.Split(expected, ", ")
	}
	if strings.Join(names, ", ") != strings.Join(want, ", ") {
		return fmt.Errorf("expected models [%s], got [%s]", expected, strings.Join(names, ", "))
	}
	return nil
}

func (s *StepsContext) theResponseTotalShouldBe(total int) error {
	_, got, err := s.page()
	if err != nil {
		return err
	}
	if got != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, got)
	}
	return nil
}

// Database steps

func (s *StepsContext) theAuditTrailShouldContain(fragment string) error {
	fragment = s.expand(fragment)
	var count int64
	if err := s.tc.DB.Raw(`SELECT COUNT(*) FROM audit_messages WHERE strpos(message, ?) > 0`, fragment).Scan(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		var messages []string
		_ = s.tc.DB.Raw(`SELECT message FROM audit_messages ORDER BY id`).Scan(&messages).Error
		return fmt.Errorf("no audit message contains %q; have:\n%s", fragment, strings.Join(messages, "\n"))
	}
	return nil
}

func (s *StepsContext) theStoredAccessCountShouldBe(alias string, expected int) error {
	id, ok := s.ids[alias]
	if !ok {
		return fmt.Errorf("unknown model %q", alias)
	}
	var count int64
	if err := s.tc.DB.Raw(`SELECT access_count FROM model_registry WHERE model_id = ?`, id).Scan(&count).Error; err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected access_count %d, got %d", expected, count)
	}
	return nil
}
