package api

import (
	"context"
	"net/http"
	"net/url"
)

const (
	pathVerify        = "/api/v1/verify"
	pathVerifyInline  = "/api/v1/verify_inline"
	pathFormVerify    = "/api/v1/form_verify"
	pathAccount       = "/api/v1/account"
	pathAccountInline = "/me"
	emailRequestField = "email"
)

// Verify runs server-side verification of one address.
func (c *Client) Verify(ctx context.Context, email string) (ValidationResult, error) {
	path := pathVerify
	if c.schema == SchemaInline {
		path = pathVerifyInline
	}
	return c.verify(ctx, path, email)
}

// FormVerify runs verification through the form endpoint, which has its own
// rate limits.
func (c *Client) FormVerify(ctx context.Context, email string) (ValidationResult, error) {
	return c.verify(ctx, pathFormVerify, email)
}

func (c *Client) verify(ctx context.Context, path, email string) (ValidationResult, error) {
	var (
		query url.Values
		body  any
	)
	if c.schema == SchemaInline {
		query = url.Values{emailRequestField: []string{email}}
	} else {
		body = map[string]string{emailRequestField: email}
	}

	resp, err := c.Do(ctx, http.MethodPost, path, query, body)
	if err != nil {
		return ValidationResult{}, err
	}
	return DecodeValidation(c.schema, resp.StatusCode, resp.Body)
}

// GetAccount retrieves the account that owns the API key.
func (c *Client) GetAccount(ctx context.Context) (AccountInfo, error) {
	path := pathAccount
	if c.schema == SchemaInline {
		path = pathAccountInline
	}

	resp, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return AccountInfo{}, err
	}
	return DecodeAccount(c.schema, resp.StatusCode, resp.Body)
}
