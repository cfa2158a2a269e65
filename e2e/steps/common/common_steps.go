package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what the common steps need from the scenario context.
type TestContext interface {
	GET(path string) error
	POSTRaw(path, body string) error
	ResponseField(path string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers request and response steps shared by every feature.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I POST to "([^"]*)" with body:$`, steps.postWithBody)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, steps.responseFieldShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be an empty list$`, steps.responseFieldShouldBeEmptyList)
	ctx.Step(`^the response should not contain "([^"]*)"$`, steps.responseShouldNotContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) get(_ context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) postWithBody(_ context.Context, path string, body *godog.DocString) error {
	return s.tc.POSTRaw(path, body.Content)
}

func (s *commonSteps) responseStatusShouldBe(_ context.Context, expected int) error {
	if actual := s.tc.GetLastResponseStatus(); actual != expected {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expected, actual, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	actual, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actual) != expected {
		return fmt.Errorf("field %s: expected %s but got %v", field, expected, actual)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldContain(_ context.Context, field, substring string) error {
	actual, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if !strings.Contains(fmt.Sprint(actual), substring) {
		return fmt.Errorf("field %s: expected to contain %q but got %v", field, substring, actual)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBeEmptyList(_ context.Context, field string) error {
	actual, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	list, ok := actual.([]any)
	if !ok || len(list) != 0 {
		return fmt.Errorf("field %s: expected an empty list but got %v", field, actual)
	}
	return nil
}

func (s *commonSteps) responseShouldNotContain(_ context.Context, text string) error {
	if strings.Contains(string(s.tc.GetLastResponseBody()), text) {
		return fmt.Errorf("response unexpectedly contains %q: %s", text, s.tc.GetLastResponseBody())
	}
	return nil
}
