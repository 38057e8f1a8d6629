package banking

import (
	"context"

	"github.com/seybold/bankdesk/core"
)

// Provider resolves core.UserContext snapshots from the banking store. The
// engine calls Fetch exactly once per session; later turns reuse the
// checkpointed snapshot.
type Provider struct {
	repo *Repository
}

// NewProvider builds a user context provider over the repository.
func NewProvider(repo *Repository) *Provider {
	return &Provider{repo: repo}
}

// Fetch loads the customer and their relationship manager.
func (p *Provider) Fetch(ctx context.Context, userID string) (core.UserContext, error) {
	customer, err := p.repo.Customer(ctx, userID)
	if err != nil {
		return core.UserContext{}, err
	}
	return core.UserContext{
		UserID:      customer.UserID,
		GivenName:   customer.GivenName,
		Surname:     customer.Surname,
		Nationality: customer.Nationality,
		ClientSince: customer.ClientSince,
		ManagerName: customer.Manager.GivenName + " " + customer.Manager.Surname,
	}, nil
}
