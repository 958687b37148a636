package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/truelist/truelist-go/internal/apierrors"
)

// Schema selects which response contract the client speaks.
type Schema string

const (
	// SchemaStandard posts a JSON body to /api/v1/verify and decodes a flat
	// record; account info comes from /api/v1/account.
	SchemaStandard Schema = "standard"
	// SchemaInline passes the address as a query parameter to
	// /api/v1/verify_inline and decodes the first entry of an "emails"
	// array; account info comes from /me.
	SchemaInline Schema = "inline"
)

// Valid reports whether s is a known schema.
func (s Schema) Valid() bool {
	return s == SchemaStandard || s == SchemaInline
}

// ParseSchema converts a configuration string to a Schema.
func ParseSchema(s string) (Schema, error) {
	schema := Schema(strings.ToLower(strings.TrimSpace(s)))
	if !schema.Valid() {
		return "", fmt.Errorf("unknown schema %q", s)
	}
	return schema, nil
}

// State is the primary verdict for an email address.
type State string

// Verification states.
const (
	StateValid   State = "valid"
	StateInvalid State = "invalid"
	StateRisky   State = "risky"
	StateUnknown State = "unknown"
)

// ParseState maps a wire spelling to a State. Both schemas' spellings are
// accepted ("ok" and "email_invalid" are the inline forms).
func ParseState(s string) (State, bool) {
	switch s {
	case "valid", "ok":
		return StateValid, true
	case "invalid", "email_invalid":
		return StateInvalid, true
	case "risky":
		return StateRisky, true
	case "unknown":
		return StateUnknown, true
	default:
		return "", false
	}
}

// SubState is the reason code behind a State.
type SubState string

// Known sub-states. The server may send others.
const (
	SubStateOK                SubState = "ok"
	SubStateAcceptAll         SubState = "accept_all"
	SubStateDisposableAddress SubState = "disposable_address"
	SubStateIsDisposable      SubState = "is_disposable"
	SubStateIsRole            SubState = "is_role"
	SubStateFailedNoMailbox   SubState = "failed_no_mailbox"
	SubStateFailedGreylisted  SubState = "failed_greylisted"
	SubStateFailedSyntax      SubState = "failed_syntax_check"
	SubStateUnknownError      SubState = "unknown_error"
)

// ValidationResult is the outcome of verifying one email address.
// Empty strings mean the server did not send the field.
type ValidationResult struct {
	Email      string
	Domain     string
	Canonical  string
	MXRecord   string
	FirstName  string
	LastName   string
	State      State
	SubState   SubState
	FreeEmail  bool
	Role       bool
	Disposable bool
	Suggestion string
	VerifiedAt string
}

// IsValid reports whether the address was verified as deliverable.
func (r ValidationResult) IsValid() bool { return r.State == StateValid }

// IsInvalid reports whether the address was rejected.
func (r ValidationResult) IsInvalid() bool { return r.State == StateInvalid }

// IsRisky reports whether the address may bounce.
func (r ValidationResult) IsRisky() bool { return r.State == StateRisky }

// IsUnknown reports whether the server could not reach a verdict.
func (r ValidationResult) IsUnknown() bool { return r.State == StateUnknown }

// IsDisposable reports whether the address belongs to a throwaway provider.
func (r ValidationResult) IsDisposable() bool {
	return r.Disposable || r.SubState == SubStateIsDisposable || r.SubState == SubStateDisposableAddress
}

// IsRole reports whether the address is a role account such as info@.
func (r ValidationResult) IsRole() bool {
	return r.Role || r.SubState == SubStateIsRole
}

// HasSuggestion reports whether the server proposed a corrected address.
func (r ValidationResult) HasSuggestion() bool { return r.Suggestion != "" }

// AccountInfo describes the account that owns the API key.
type AccountInfo struct {
	Email       string
	Plan        string
	Credits     int
	Name        string
	UUID        string
	TimeZone    string
	IsAdminRole bool
}

type standardValidation struct {
	Email      *string `json:"email"`
	Domain     *string `json:"domain"`
	State      *string `json:"state"`
	SubState   *string `json:"sub_state"`
	FreeEmail  *bool   `json:"free_email"`
	Role       *bool   `json:"role"`
	Disposable *bool   `json:"disposable"`
	Suggestion *string `json:"suggestion"`
}

type inlineValidation struct {
	Email      *string `json:"email"`
	Domain     *string `json:"domain"`
	Canonical  *string `json:"canonical"`
	MXRecord   *string `json:"mx_record"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	State      *string `json:"state"`
	SubState   *string `json:"sub_state"`
	VerifiedAt *string `json:"verified_at"`
	Suggestion *string `json:"suggestion"`
}

type inlineValidationResponse struct {
	Emails []inlineValidation `json:"emails"`
}

type standardAccount struct {
	Email   *string `json:"email"`
	Plan    *string `json:"plan"`
	Credits *int    `json:"credits"`
}

type inlineAccount struct {
	Email       *string `json:"email"`
	Name        *string `json:"name"`
	UUID        *string `json:"uuid"`
	TimeZone    *string `json:"time_zone"`
	IsAdminRole *bool   `json:"is_admin_role"`
	PaymentPlan *string `json:"payment_plan"`
}

// DecodeValidation decodes a verification response body for the schema.
func DecodeValidation(schema Schema, statusCode int, body []byte) (ValidationResult, error) {
	switch schema {
	case SchemaInline:
		var env inlineValidationResponse
		if err := json.Unmarshal(body, &env); err != nil {
			return ValidationResult{}, apierrors.NewDecodeError(statusCode, body, "invalid JSON: %v", err)
		}
		if len(env.Emails) == 0 {
			return ValidationResult{}, apierrors.NewDecodeError(statusCode, body, "missing required field(s): emails")
		}
		return env.Emails[0].toResult(statusCode, body)
	default:
		var raw standardValidation
		if err := json.Unmarshal(body, &raw); err != nil {
			return ValidationResult{}, apierrors.NewDecodeError(statusCode, body, "invalid JSON: %v", err)
		}
		return raw.toResult(statusCode, body)
	}
}

func (v *standardValidation) toResult(statusCode int, body []byte) (ValidationResult, error) {
	var missing fields
	missing.str("email", v.Email)
	missing.str("state", v.State)
	missing.str("sub_state", v.SubState)
	missing.boolean("free_email", v.FreeEmail)
	missing.boolean("role", v.Role)
	missing.boolean("disposable", v.Disposable)
	if err := missing.err(statusCode, body); err != nil {
		return ValidationResult{}, err
	}

	state, ok := ParseState(*v.State)
	if !ok {
		return ValidationResult{}, apierrors.NewDecodeError(statusCode, body, "unknown state %q", *v.State)
	}

	return ValidationResult{
		Email:      *v.Email,
		Domain:     deref(v.Domain),
		State:      state,
		SubState:   SubState(*v.SubState),
		FreeEmail:  *v.FreeEmail,
		Role:       *v.Role,
		Disposable: *v.Disposable,
		Suggestion: deref(v.Suggestion),
	}, nil
}

func (v *inlineValidation) toResult(statusCode int, body []byte) (ValidationResult, error) {
	var missing fields
	missing.str("emails[0].email", v.Email)
	missing.str("emails[0].state", v.State)
	missing.str("emails[0].sub_state", v.SubState)
	if err := missing.err(statusCode, body); err != nil {
		return ValidationResult{}, err
	}

	state, ok := ParseState(*v.State)
	if !ok {
		return ValidationResult{}, apierrors.NewDecodeError(statusCode, body, "unknown state %q", *v.State)
	}

	return ValidationResult{
		Email:      *v.Email,
		Domain:     deref(v.Domain),
		Canonical:  deref(v.Canonical),
		MXRecord:   deref(v.MXRecord),
		FirstName:  deref(v.FirstName),
		LastName:   deref(v.LastName),
		State:      state,
		SubState:   SubState(*v.SubState),
		Suggestion: deref(v.Suggestion),
		VerifiedAt: deref(v.VerifiedAt),
	}, nil
}

// DecodeAccount decodes an account response body for the schema.
func DecodeAccount(schema Schema, statusCode int, body []byte) (AccountInfo, error) {
	var missing fields

	switch schema {
	case SchemaInline:
		var raw inlineAccount
		if err := json.Unmarshal(body, &raw); err != nil {
			return AccountInfo{}, apierrors.NewDecodeError(statusCode, body, "invalid JSON: %v", err)
		}
		missing.str("email", raw.Email)
		missing.str("name", raw.Name)
		missing.str("uuid", raw.UUID)
		missing.boolean("is_admin_role", raw.IsAdminRole)
		missing.str("payment_plan", raw.PaymentPlan)
		if err := missing.err(statusCode, body); err != nil {
			return AccountInfo{}, err
		}
		return AccountInfo{
			Email:       *raw.Email,
			Plan:        *raw.PaymentPlan,
			Name:        *raw.Name,
			UUID:        *raw.UUID,
			TimeZone:    deref(raw.TimeZone),
			IsAdminRole: *raw.IsAdminRole,
		}, nil
	default:
		var raw standardAccount
		if err := json.Unmarshal(body, &raw); err != nil {
			return AccountInfo{}, apierrors.NewDecodeError(statusCode, body, "invalid JSON: %v", err)
		}
		missing.str("email", raw.Email)
		missing.str("plan", raw.Plan)
		if raw.Credits == nil {
			missing = append(missing, "credits")
		}
		if err := missing.err(statusCode, body); err != nil {
			return AccountInfo{}, err
		}
		return AccountInfo{
			Email:   *raw.Email,
			Plan:    *raw.Plan,
			Credits: *raw.Credits,
		}, nil
	}
}

// fields collects the names of required fields absent from a body.
type fields []string

func (f *fields) str(name string, v *string) {
	if v == nil {
		*f = append(*f, name)
	}
}

func (f *fields) boolean(name string, v *bool) {
	if v == nil {
		*f = append(*f, name)
	}
}

func (f fields) err(statusCode int, body []byte) error {
	if len(f) == 0 {
		return nil
	}
	return apierrors.NewDecodeError(statusCode, body, "missing required field(s): %s", strings.Join(f, ", "))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
