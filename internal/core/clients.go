package core

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/duynhne/backoffice/config"
	"github.com/duynhne/backoffice/internal/core/apiclient"
	"github.com/duynhne/backoffice/internal/core/domain"
)

// Clients holds one Resource Client per entity, all sharing one HTTP client.
type Clients struct {
	Users      domain.UserClient
	Categories domain.CategoryClient
	Items      domain.ItemClient
	Orders     domain.OrderClient
}

// NewClients builds the Resource Clients for {cfg.BaseURL}/api/{resource}.
func NewClients(cfg config.APIConfig, logger *zap.Logger) *Clients {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	base := cfg.BaseURL + "/api"

	return &Clients{
		Users:      apiclient.New[domain.User, domain.UserInput](base, "users", httpClient, logger),
		Categories: apiclient.New[domain.Category, domain.CategoryInput](base, "categories", httpClient, logger),
		Items:      apiclient.New[domain.Item, domain.ItemInput](base, "items", httpClient, logger),
		Orders:     apiclient.New[domain.Order, domain.OrderInput](base, "orders", httpClient, logger),
	}
}
