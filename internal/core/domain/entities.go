package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Prices go over the wire as JSON numbers, matching what the API returns.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Record is one entity instance as returned by the external API.
// Identifiers are assigned by the API and never by the dashboard.
type Record interface {
	GetID() string
}

type User struct {
	ID              string `json:"_id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ShippingAddress string `json:"shippingAddress"`
	BillingAddress  string `json:"billingAddress"`
}

func (u User) GetID() string { return u.ID }

type UserInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ShippingAddress string `json:"shippingAddress"`
	BillingAddress  string `json:"billingAddress"`
}

type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c Category) GetID() string { return c.ID }

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryRef is the category an Item points to. List responses embed the
// category object; some responses only carry its identifier.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts an embedded object, a bare identifier string, or null.
func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = CategoryRef{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("category reference: %w", err)
		}
		*r = CategoryRef{ID: id}
		return nil
	}

	type plain CategoryRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("category reference: %w", err)
	}
	*r = CategoryRef(p)
	return nil
}

type Item struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    *CategoryRef    `json:"category"`
}

func (i Item) GetID() string { return i.ID }

// CategoryID returns the referenced category identifier, or "" when absent.
func (i Item) CategoryID() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.ID
}

// CategoryName returns the embedded category name, or "" when absent.
func (i Item) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.Name
}

// ItemInput is the write payload; category is sent as the identifier only.
type ItemInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

type Order struct {
	ID          string          `json:"_id"`
	UserID      string          `json:"userId"`
	ItemName    string          `json:"itemName"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func (o Order) GetID() string { return o.ID }

type OrderInput struct {
	UserID      string          `json:"userId"`
	ItemName    string          `json:"itemName"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}
