package truelist

import (
	"context"

	"github.com/truelist/truelist-go/internal/api"
)

// ValidationResult is the outcome of verifying one email address. It is a
// plain value; its predicates are computed from State and SubState on each
// call.
type ValidationResult = api.ValidationResult

// State is the primary verdict for an address.
type State = api.State

// Verification states.
const (
	StateValid   = api.StateValid
	StateInvalid = api.StateInvalid
	StateRisky   = api.StateRisky
	StateUnknown = api.StateUnknown
)

// SubState is the reason code behind a State. The server may send values
// beyond the named constants.
type SubState = api.SubState

// Known sub-states.
const (
	SubStateOK                = api.SubStateOK
	SubStateAcceptAll         = api.SubStateAcceptAll
	SubStateDisposableAddress = api.SubStateDisposableAddress
	SubStateIsDisposable      = api.SubStateIsDisposable
	SubStateIsRole            = api.SubStateIsRole
	SubStateFailedNoMailbox   = api.SubStateFailedNoMailbox
	SubStateFailedGreylisted  = api.SubStateFailedGreylisted
	SubStateFailedSyntax      = api.SubStateFailedSyntax
	SubStateUnknownError      = api.SubStateUnknownError
)

// EmailService validates email addresses.
type EmailService struct {
	client *Client
}

// Validate verifies one address server-side.
func (s *EmailService) Validate(ctx context.Context, email string) (ValidationResult, error) {
	if err := s.client.checkClosed(); err != nil {
		return ValidationResult{}, err
	}
	return s.client.apiClient.Verify(ctx, email)
}

// FormValidate verifies one address through the form endpoint, which is
// meant for signup forms and carries its own rate limits.
func (s *EmailService) FormValidate(ctx context.Context, email string) (ValidationResult, error) {
	if err := s.client.checkClosed(); err != nil {
		return ValidationResult{}, err
	}
	return s.client.apiClient.FormVerify(ctx, email)
}
