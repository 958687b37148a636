package truelist

import (
	"context"
	"sync"
)

// Pending is the eventual result of a call started by an [AsyncClient].
type Pending[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	value  T
	err    error
}

// start runs fn on its own goroutine with a context derived from ctx.
func start[T any](ctx context.Context, fn func(context.Context) (T, error)) *Pending[T] {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(p.done)
		defer cancel()
		p.value, p.err = fn(ctx)
	}()

	return p
}

// Await blocks until the call finishes or ctx is done. If ctx ends first
// the call is cancelled, Await waits for it to stop, and ctx.Err() is
// returned.
func (p *Pending[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		p.cancel()
		<-p.done
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel aborts the call. A pending retry sleep or in-flight request stops
// and no further attempt is made. Await then reports the cancellation.
func (p *Pending[T]) Cancel() {
	p.cancel()
}

// Done is closed once the call has finished.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// AsyncClient issues calls without blocking the caller. Each call runs in
// its own goroutine through the same retry policy as [Client].
type AsyncClient struct {
	client *Client

	emailOnce   sync.Once
	email       *AsyncEmailService
	accountOnce sync.Once
	account     *AsyncAccountService
}

// NewAsync creates a client whose calls return [Pending] results.
func NewAsync(apiKey string, opts ...Option) (*AsyncClient, error) {
	c, err := New(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return c.Async(), nil
}

// Email returns the non-blocking email validation service.
func (a *AsyncClient) Email() *AsyncEmailService {
	a.emailOnce.Do(func() {
		a.email = &AsyncEmailService{svc: a.client.Email()}
	})
	return a.email
}

// Account returns the non-blocking account service.
func (a *AsyncClient) Account() *AsyncAccountService {
	a.accountOnce.Do(func() {
		a.account = &AsyncAccountService{svc: a.client.Account()}
	})
	return a.account
}

// Blocking returns the underlying blocking client.
func (a *AsyncClient) Blocking() *Client {
	return a.client
}

// Close closes the underlying client.
func (a *AsyncClient) Close() error {
	return a.client.Close()
}

// Use calls fn and closes the client afterwards, including when fn panics.
func (a *AsyncClient) Use(fn func(*AsyncClient) error) error {
	defer a.Close()
	return fn(a)
}

// AsyncEmailService validates email addresses without blocking.
type AsyncEmailService struct {
	svc *EmailService
}

// Validate starts a server-side verification of email.
func (s *AsyncEmailService) Validate(ctx context.Context, email string) *Pending[ValidationResult] {
	return start(ctx, func(ctx context.Context) (ValidationResult, error) {
		return s.svc.Validate(ctx, email)
	})
}

// FormValidate starts a verification of email through the form endpoint.
func (s *AsyncEmailService) FormValidate(ctx context.Context, email string) *Pending[ValidationResult] {
	return start(ctx, func(ctx context.Context) (ValidationResult, error) {
		return s.svc.FormValidate(ctx, email)
	})
}

// AsyncAccountService reads account information without blocking.
type AsyncAccountService struct {
	svc *AccountService
}

// Get starts fetching the current account.
func (s *AsyncAccountService) Get(ctx context.Context) *Pending[AccountInfo] {
	return start(ctx, s.svc.Get)
}
