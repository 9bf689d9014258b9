package registry

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers register/lookup step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	ctx.Step(`^I look up address "([^"]*)"$`, steps.lookup)
	ctx.Step(`^I look up address "([^"]*)" on the legacy route$`, steps.lookupLegacy)
	ctx.Step(`^I register address "([^"]*)" as non-resident accepting terms$`, steps.registerConsenting)
	ctx.Step(`^I register address "([^"]*)" as resident$`, steps.registerResident)

	ctx.Step(`^the error code should be (\d+)$`, steps.errorCodeShouldBe)
	ctx.Step(`^the error message should be "([^"]*)"$`, steps.errorMessageShouldBe)
	ctx.Step(`^the user should have address "([^"]*)" and amount (\d+)$`, steps.userShouldBe)
}

type registrySteps struct {
	tc TestContext
}

func lookupQuery(address string) string {
	q := url.Values{}
	q.Set("address", address)
	q.Set("recaptcha", "e2e")
	return q.Encode()
}

func (s *registrySteps) lookup(ctx context.Context, address string) error {
	return s.tc.GET("/get?" + lookupQuery(address))
}

func (s *registrySteps) lookupLegacy(ctx context.Context, address string) error {
	return s.tc.GET("/1.0/get?" + lookupQuery(address))
}

func (s *registrySteps) registerConsenting(ctx context.Context, address string) error {
	return s.tc.POST("/register", map[string]any{
		"not_resident": true,
		"terms":        true,
		"address":      address,
		"recaptcha":    "e2e",
	})
}

func (s *registrySteps) registerResident(ctx context.Context, address string) error {
	return s.tc.POST("/register", map[string]any{
		"not_resident": false,
		"terms":        true,
		"address":      address,
		"recaptcha":    "e2e",
	})
}

func (s *registrySteps) errorCodeShouldBe(ctx context.Context, want int) error {
	got, err := s.tc.GetResponseField("error.code")
	if err != nil {
		return err
	}
	if code, ok := got.(float64); !ok || int(code) != want {
		return fmt.Errorf("expected error code %d, got %v", want, got)
	}
	return nil
}

func (s *registrySteps) errorMessageShouldBe(ctx context.Context, want string) error {
	got, err := s.tc.GetResponseField("error.message")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected error message %q, got %v", want, got)
	}
	return nil
}

func (s *registrySteps) userShouldBe(ctx context.Context, address string, amount int) error {
	gotAddr, err := s.tc.GetResponseField("user.address")
	if err != nil {
		return err
	}
	gotAmount, err := s.tc.GetResponseField("user.amount")
	if err != nil {
		return err
	}
	if gotAddr != address {
		return fmt.Errorf("expected address %q, got %v", address, gotAddr)
	}
	if n, ok := gotAmount.(float64); !ok || int(n) != amount {
		return fmt.Errorf("expected amount %d, got %v", amount, gotAmount)
	}
	return nil
}
