package screening

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what the screening steps need from the scenario context.
type TestContext interface {
	Start() error
	DisableAPIKey()
	SetModelReply(text string)
	SetModelStatus(status int)
	LastPrompt() string
}

// RegisterSteps registers steps that control the service and its model stub.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &screeningSteps{tc: tc}

	ctx.Step(`^the compliance service is running$`, steps.serviceIsRunning)
	ctx.Step(`^the compliance service is running without a generation API key$`, steps.serviceIsRunningWithoutKey)
	ctx.Step(`^the model replies with:$`, steps.modelRepliesWith)
	ctx.Step(`^the model replies with "([^"]*)"$`, steps.modelRepliesWithText)
	ctx.Step(`^the model fails with status (\d+)$`, steps.modelFailsWithStatus)
	ctx.Step(`^the prompt sent to the model should contain "([^"]*)"$`, steps.promptShouldContain)
	ctx.Step(`^the prompt sent to the model should not contain "([^"]*)"$`, steps.promptShouldNotContain)
}

type screeningSteps struct {
	tc TestContext
}

func (s *screeningSteps) serviceIsRunning(context.Context) error {
	return s.tc.Start()
}

func (s *screeningSteps) serviceIsRunningWithoutKey(context.Context) error {
	s.tc.DisableAPIKey()
	return s.tc.Start()
}

func (s *screeningSteps) modelRepliesWith(_ context.Context, reply *godog.DocString) error {
	s.tc.SetModelReply(reply.Content)
	return nil
}

func (s *screeningSteps) modelRepliesWithText(_ context.Context, reply string) error {
	s.tc.SetModelReply(reply)
	return nil
}

func (s *screeningSteps) modelFailsWithStatus(_ context.Context, status int) error {
	s.tc.SetModelStatus(status)
	return nil
}

func (s *screeningSteps) promptShouldContain(_ context.Context, text string) error {
	if prompt := s.tc.LastPrompt(); !strings.Contains(prompt, text) {
		return fmt.Errorf("prompt does not contain %q:\n%s", text, prompt)
	}
	return nil
}

func (s *screeningSteps) promptShouldNotContain(_ context.Context, text string) error {
	if prompt := s.tc.LastPrompt(); strings.Contains(prompt, text) {
		return fmt.Errorf("prompt unexpectedly contains %q:\n%s", text, prompt)
	}
	return nil
}
