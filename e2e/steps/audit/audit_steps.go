package audit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetToken() string
	SetToken(token string)
}

// RegisterSteps registers token and audit log step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &auditSteps{tc: tc}

	ctx.Step(`^I request a new token$`, steps.requestToken)
	ctx.Step(`^I save the token$`, steps.saveToken)
	ctx.Step(`^I log action "([^"]*)" with the saved token$`, steps.logWithSavedToken)
	ctx.Step(`^I log action "([^"]*)" with token "([^"]*)"$`, steps.logWithToken)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
}

type auditSteps struct {
	tc TestContext
}

func (s *auditSteps) requestToken(ctx context.Context) error {
	return s.tc.POST("/token", nil)
}

func (s *auditSteps) saveToken(ctx context.Context) error {
	tok, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	str, ok := tok.(string)
	if !ok || str == "" {
		return fmt.Errorf("expected a token string, got %v", tok)
	}
	s.tc.SetToken(str)
	return nil
}

func (s *auditSteps) logWithSavedToken(ctx context.Context, action string) error {
	return s.logWithToken(ctx, action, s.tc.GetToken())
}

func (s *auditSteps) logWithToken(ctx context.Context, action, token string) error {
	return s.tc.POST("/log", map[string]any{
		"token":   token,
		"action":  action,
		"payload": map[string]string{"source": "e2e"},
	})
}

func (s *auditSteps) fieldShouldBe(ctx context.Context, field, want string) error {
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s=%q, got %v", field, want, got)
	}
	return nil
}
