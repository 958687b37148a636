package truelist

import (
	"context"

	"github.com/truelist/truelist-go/internal/api"
)

// AccountInfo describes the account that owns the API key. Which fields are
// filled depends on the client's Schema.
type AccountInfo = api.AccountInfo

// AccountService reads account information.
type AccountService struct {
	client *Client
}

// Get fetches the current account. Nothing is cached; every call hits the API.
func (s *AccountService) Get(ctx context.Context) (AccountInfo, error) {
	if err := s.client.checkClosed(); err != nil {
		return AccountInfo{}, err
	}
	return s.client.apiClient.GetAccount(ctx)
}
