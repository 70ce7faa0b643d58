package domain

import "context"

// ResourceClient defines data access for one entity collection of the external API.
// Every method is a single HTTP round trip.
type ResourceClient[T Record, In any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, in In) (*T, error)
	Update(ctx context.Context, id string, in In) (*T, error)
	Delete(ctx context.Context, id string) error
}

type (
	UserClient     = ResourceClient[User, UserInput]
	CategoryClient = ResourceClient[Category, CategoryInput]
	ItemClient     = ResourceClient[Item, ItemInput]
	OrderClient    = ResourceClient[Order, OrderInput]
)
