package e2e

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"airdrop/e2e/steps/audit"
	"airdrop/e2e/steps/registry"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(func(c context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return c, nil
	})

	ctx.Step(`^the response status should be (\d+)$`, func(want int) error {
		if tc.StatusCode() != want {
			return fmt.Errorf("expected status %d, got %d (body %v)", want, tc.StatusCode(), tc.lastBody)
		}
		return nil
	})

	registry.RegisterSteps(ctx, tc)
	audit.RegisterSteps(ctx, tc)
}
