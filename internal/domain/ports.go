package domain

import "context"

// TransferRepository defines the persistence contract for transfers.
type TransferRepository interface {
	Create(ctx context.Context, transfer Transfer) error
	GetByID(ctx context.Context, id string) (Transfer, error)
	List(ctx context.Context, filter TransferFilter) ([]Transfer, int, error)
	Update(ctx context.Context, transfer Transfer) error
	Stats(ctx context.Context, filter StatsFilter) (TransferStats, error)
}

// TransferFilter holds optional criteria and pagination for listing transfers.
// Branch matches transfers where it is either the source or the destination.
type TransferFilter struct {
	ProductID *string
	Branch    *string
	Status    *Status
	Reason    *Reason
	Page      int
	Limit     int
}

// StatsFilter scopes transfer statistics to a branch (source or destination).
type StatsFilter struct {
	Branch *string
}

// StatsBucket is one aggregation group: how many transfers and how much
// quantity fell into it.
type StatsBucket struct {
	Count    int
	Quantity int
}

// TransferStats aggregates transfers by status and by reason.
type TransferStats struct {
	Total         int
	TotalQuantity int
	ByStatus      map[Status]StatsBucket
	ByReason      map[Reason]StatsBucket
}

// StockLedger is the single authority over per-(product, branch) quantities.
// Callers never read-modify-write stock directly; every adjustment is an
// atomic conditional operation inside the ledger.
type StockLedger interface {
	// Reserve atomically decrements stock at branch if at least quantity
	// is available, returning InsufficientStockError otherwise.
	Reserve(ctx context.Context, productID, branchID string, quantity int) error
	// Deposit adds quantity to stock at branch, creating the ledger row
	// if it does not exist. Used for deliveries, releases and receiving.
	Deposit(ctx context.Context, productID, branchID string, quantity int) error
	// Quantity reports current stock at branch. Missing rows read as 0.
	Quantity(ctx context.Context, productID, branchID string) (int, error)
	// Levels returns every ledger row for a product across branches.
	Levels(ctx context.Context, productID string) ([]StockLevel, error)
}

// CatalogRepository defines the persistence contract for products and branches.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, product Product) error
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	CreateBranch(ctx context.Context, branch Branch) error
	GetBranch(ctx context.Context, id string) (Branch, error)
	ListBranches(ctx context.Context) ([]Branch, error)
}

// UserRepository defines the persistence contract for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
}

// EventPublisher defines the contract for emitting transfer lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, transfer Transfer) error
}

// TransitionValidator checks lifecycle transitions against Transitions and
// returns the destination status for a valid (status, event) pair.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}
