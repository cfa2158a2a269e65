package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the code-matching and wrapping rules every layer relies on
// when mapping failures to HTTP responses.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeUpstream, Message: "text generation failed"}
		s.Equal("text generation failed", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeValidation}
		s.Equal("validation_failed", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.True((&Error{Code: CodeTimeout, Message: "a"}).Is(&Error{Code: CodeTimeout, Message: "b"}))
	s.False((&Error{Code: CodeTimeout}).Is(&Error{Code: CodeInternal}))
	s.False((&Error{Code: CodeTimeout}).Is(errors.New("timeout")))

	inner := &Error{Code: CodeUpstream, Message: "provider outage"}
	wrapped := &Error{Code: CodeInternal, Message: "screening failed", Err: inner}
	s.True(errors.Is(wrapped, &Error{Code: CodeUpstream}))
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code", func() {
		wrapped := Wrap(New(CodeTimeout, "generation timed out"), CodeInternal, "AML screening failed")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeTimeout, domainErr.Code)
		s.Equal("AML screening failed", domainErr.Message)
	})

	s.Run("uses provided code for plain errors", func() {
		root := errors.New("connection reset")
		wrapped := Wrap(root, CodeUpstream, "text generation failed")

		s.True(HasCode(wrapped, CodeUpstream))
		s.True(errors.Is(wrapped, root))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeBadRequest, "bad"), CodeBadRequest))
	s.False(HasCode(New(CodeBadRequest, "bad"), CodeInternal))
	s.False(HasCode(errors.New("plain"), CodeBadRequest))
	s.False(HasCode(nil, CodeBadRequest))
}
