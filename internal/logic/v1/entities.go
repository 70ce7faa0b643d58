package v1

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/duynhne/backoffice/internal/core/domain"
	"github.com/duynhne/backoffice/internal/report"
)

const noDescription = "No description available"

func column[T any](title string, value func(T) string) report.Column[T] {
	return report.Column[T]{Title: title, Value: value}
}

// price parses a field already checked as numeric.
func price(values FormValues) (decimal.Decimal, FieldErrors) {
	d, err := decimal.NewFromString(values.Get("price"))
	if err != nil {
		return decimal.Zero, FieldErrors{"price": "Price must be a number"}
	}
	return d, nil
}

func priceText(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	return d.String()
}

// UserDefinition is the Users screen: contact and address fields, no report.
func UserDefinition() Definition[domain.User, domain.UserInput] {
	return Definition[domain.User, domain.UserInput]{
		Name:   "User",
		Plural: "Users",
		Fields: []Field{
			{Name: "username", Label: "Username", Kind: KindText, Required: true, Message: "Please input username!"},
			{Name: "email", Label: "Email", Kind: KindText, Required: true, Message: "Please input valid email address!"},
			{Name: "phone", Label: "Phone", Kind: KindText},
			{Name: "shippingAddress", Label: "Shipping Address", Kind: KindTextArea},
			{Name: "billingAddress", Label: "Billing Address", Kind: KindTextArea},
		},
		Columns: []report.Column[domain.User]{
			column("Username", func(u domain.User) string { return u.Username }),
			column("Email", func(u domain.User) string { return u.Email }),
			column("Phone", func(u domain.User) string { return u.Phone }),
			column("Shipping Address", func(u domain.User) string { return u.ShippingAddress }),
			column("Billing Address", func(u domain.User) string { return u.BillingAddress }),
		},
		Values: func(u domain.User) FormValues {
			return FormValues{
				"username":        u.Username,
				"email":           u.Email,
				"phone":           u.Phone,
				"shippingAddress": u.ShippingAddress,
				"billingAddress":  u.BillingAddress,
			}
		},
		Input: func(v FormValues) (domain.UserInput, FieldErrors) {
			return domain.UserInput{
				Username:        v.Get("username"),
				Email:           v.Get("email"),
				Phone:           v.Get("phone"),
				ShippingAddress: v.Get("shippingAddress"),
				BillingAddress:  v.Get("billingAddress"),
			}, nil
		},
		Label: func(u domain.User) string { return u.Username },
	}
}

// CategoryDefinition is the Categories screen with a name and description.
func CategoryDefinition() Definition[domain.Category, domain.CategoryInput] {
	return Definition[domain.Category, domain.CategoryInput]{
		Name:   "Category",
		Plural: "Categories",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Message: "Please input category name!"},
			{Name: "description", Label: "Description", Kind: KindTextArea},
		},
		Columns: []report.Column[domain.Category]{
			column("Name", func(c domain.Category) string { return c.Name }),
			column("Description", func(c domain.Category) string { return c.Description }),
		},
		Values: func(c domain.Category) FormValues {
			return FormValues{"name": c.Name, "description": c.Description}
		},
		Input: func(v FormValues) (domain.CategoryInput, FieldErrors) {
			return domain.CategoryInput{Name: v.Get("name"), Description: v.Get("description")}, nil
		},
		Label: func(c domain.Category) string { return c.Name },
	}
}

// ItemDefinition offers the categories loaded through categories as the
// choices of the category field.
func ItemDefinition(categories domain.CategoryClient) Definition[domain.Item, domain.ItemInput] {
	return Definition[domain.Item, domain.ItemInput]{
		Name:   "Item",
		Plural: "Items",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
			{Name: "description", Label: "Description", Kind: KindTextArea},
			{Name: "price", Label: "Price", Kind: KindNumber, Required: true},
			{Name: "category", Label: "Category", Kind: KindSelect, Required: true, Options: categoryOptions(categories)},
		},
		Columns: []report.Column[domain.Item]{
			column("Name", func(i domain.Item) string { return i.Name }),
			column("Description", func(i domain.Item) string { return i.Description }),
			column("Price", func(i domain.Item) string { return i.Price.String() }),
			column("Category", func(i domain.Item) string { return i.CategoryName() }),
		},
		Values: func(i domain.Item) FormValues {
			return FormValues{
				"name":        i.Name,
				"description": i.Description,
				"price":       i.Price.String(),
				"category":    i.CategoryID(),
			}
		},
		Input: func(v FormValues) (domain.ItemInput, FieldErrors) {
			p, errs := price(v)
			return domain.ItemInput{
				Name:        v.Get("name"),
				Description: v.Get("description"),
				Price:       p,
				Category:    v.Get("category"),
			}, errs
		},
		Label: func(i domain.Item) string { return i.Name },
		Report: &ReportSpec[domain.Item]{
			Title:  "Item Report",
			Prefix: "item",
			Columns: []report.Column[domain.Item]{
				column("Name", func(i domain.Item) string { return report.Fallback(i.Name, "Unknown Name") }),
				column("Description", func(i domain.Item) string { return report.Fallback(i.Description, noDescription) }),
				column("Price", func(i domain.Item) string { return priceText(i.Price) }),
				column("Category", func(i domain.Item) string { return report.Fallback(i.CategoryName(), "Unknown Category") }),
			},
		},
	}
}

// OrderDefinition is the Orders screen; its report falls back on unknown users and items.
func OrderDefinition() Definition[domain.Order, domain.OrderInput] {
	return Definition[domain.Order, domain.OrderInput]{
		Name:   "Order",
		Plural: "Orders",
		Fields: []Field{
			{Name: "userId", Label: "User ID", Kind: KindText, Required: true},
			{Name: "itemName", Label: "Item Name", Kind: KindText, Required: true},
			{Name: "description", Label: "Description", Kind: KindTextArea, Required: true},
			{Name: "price", Label: "Price", Kind: KindNumber, Required: true},
		},
		Columns: []report.Column[domain.Order]{
			column("User ID", func(o domain.Order) string { return o.UserID }),
			column("Item Name", func(o domain.Order) string { return o.ItemName }),
			column("Description", func(o domain.Order) string { return o.Description }),
			column("Price", func(o domain.Order) string { return o.Price.String() }),
		},
		Values: func(o domain.Order) FormValues {
			return FormValues{
				"userId":      o.UserID,
				"itemName":    o.ItemName,
				"description": o.Description,
				"price":       o.Price.String(),
			}
		},
		Input: func(v FormValues) (domain.OrderInput, FieldErrors) {
			p, errs := price(v)
			return domain.OrderInput{
				UserID:      v.Get("userId"),
				ItemName:    v.Get("itemName"),
				Description: v.Get("description"),
				Price:       p,
			}, errs
		},
		Label: func(o domain.Order) string { return o.ItemName },
		Report: &ReportSpec[domain.Order]{
			Title:  "Order Report",
			Prefix: "order",
			Columns: []report.Column[domain.Order]{
				column("User ID", func(o domain.Order) string { return report.Fallback(o.UserID, "Unknown User") }),
				column("Item Name", func(o domain.Order) string { return report.Fallback(o.ItemName, "Unknown Item") }),
				column("Description", func(o domain.Order) string { return report.Fallback(o.Description, noDescription) }),
				column("Price", func(o domain.Order) string { return priceText(o.Price) }),
			},
		},
	}
}

func categoryOptions(categories domain.CategoryClient) OptionLoader {
	return func(ctx context.Context) ([]Option, error) {
		list, err := categories.List(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, 0, len(list))
		for _, c := range list {
			opts = append(opts, Option{Value: c.ID, Label: c.Name})
		}
		return opts, nil
	}
}
