package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dmaros/branchstock/internal/app"
	"github.com/dmaros/branchstock/internal/domain"
)

// Handler bundles the services and settings the API operations depend on.
type Handler struct {
	Transfers *app.TransferService
	Catalog   *app.CatalogService
	Users     domain.UserRepository
	JWTSecret string
}

// Register adds all API routes to the Huma API. Every route except login
// requires a valid bearer token; mutating transfer and catalog routes
// additionally require the matching capability.
func Register(api huma.API, h Handler) {
	registerAuth(api, h.Users, h.JWTSecret)
	registerTransfers(api, h)
	registerCatalog(api, h)
}

// TransferResponse is the API representation of a transfer.
type TransferResponse struct {
	ID             string  `json:"id" doc:"Unique identifier"`
	ProductID      string  `json:"product_id" doc:"Transferred product"`
	ProductName    string  `json:"product_name,omitempty" doc:"Product display name"`
	FromBranch     string  `json:"from_branch" doc:"Source branch"`
	FromBranchName string  `json:"from_branch_name,omitempty" doc:"Source branch display name"`
	ToBranch       string  `json:"to_branch" doc:"Destination branch"`
	ToBranchName   string  `json:"to_branch_name,omitempty" doc:"Destination branch display name"`
	Quantity       int     `json:"quantity" doc:"Units moved"`
	Reason         string  `json:"reason" doc:"Why the transfer was requested"`
	Notes          string  `json:"notes,omitempty" doc:"Free-text notes"`
	Status         string  `json:"status" doc:"Lifecycle state"`
	CreatedBy      string  `json:"created_by" doc:"Requesting user"`
	CreatedByName  string  `json:"created_by_name,omitempty" doc:"Requesting user display name"`
	CreatedAt      string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	CompletedAt    *string `json:"completed_at,omitempty" doc:"Completion timestamp (ISO 8601)"`
	CompletedBy    *string `json:"completed_by,omitempty" doc:"Completing user"`
}

const timeFormat = "2006-01-02T15:04:05Z"

func toTransferResponse(t domain.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:             t.ID,
		ProductID:      t.ProductID,
		ProductName:    t.ProductName,
		FromBranch:     t.FromBranch,
		FromBranchName: t.FromBranchName,
		ToBranch:       t.ToBranch,
		ToBranchName:   t.ToBranchName,
		Quantity:       t.Quantity,
		Reason:         string(t.Reason),
		Notes:          t.Notes,
		Status:         string(t.Status),
		CreatedBy:      t.CreatedBy,
		CreatedByName:  t.CreatedByName,
		CreatedAt:      t.CreatedAt.Format(timeFormat),
		CompletedBy:    t.CompletedBy,
	}
	if t.CompletedAt != nil {
		formatted := t.CompletedAt.Format(timeFormat)
		resp.CompletedAt = &formatted
	}
	return resp
}

// TransferData wraps a single transfer in the response envelope.
type TransferData struct {
	Transfer TransferResponse `json:"transfer"`
}

// Pagination describes the page of a list response.
type Pagination struct {
	Page  int `json:"page" doc:"Current page (1-based)"`
	Limit int `json:"limit" doc:"Page size"`
	Total int `json:"total" doc:"Total matching transfers"`
	Pages int `json:"pages" doc:"Total pages"`
}

// TransferListData wraps a page of transfers in the response envelope.
type TransferListData struct {
	Transfers  []TransferResponse `json:"transfers"`
	Pagination Pagination         `json:"pagination"`
}

// StatsBucket mirrors domain.StatsBucket for the API.
type StatsBucket struct {
	Count    int `json:"count" doc:"Transfers in this bucket"`
	Quantity int `json:"quantity" doc:"Units in this bucket"`
}

// StatsData wraps transfer statistics in the response envelope.
type StatsData struct {
	Stats struct {
		Total         int                    `json:"total" doc:"Total transfers"`
		TotalQuantity int                    `json:"total_quantity" doc:"Total units"`
		ByStatus      map[string]StatsBucket `json:"by_status" doc:"Buckets grouped by status"`
		ByReason      map[string]StatsBucket `json:"by_reason" doc:"Buckets grouped by reason"`
	} `json:"stats"`
}

// --- Create Transfer ---

type CreateTransferInput struct {
	Body struct {
		ProductID  string `json:"productId" minLength:"1" doc:"Product to move"`
		FromBranch string `json:"fromBranch" minLength:"1" doc:"Source branch"`
		ToBranch   string `json:"toBranch" minLength:"1" doc:"Destination branch"`
		Quantity   int    `json:"quantity" minimum:"1" doc:"Units to move"`
		Reason     string `json:"reason" enum:"restock,demand,rebalance,emergency,other" doc:"Why the transfer is requested"`
		Notes      string `json:"notes,omitempty" maxLength:"500" doc:"Optional free-text notes"`
	}
}

type TransferOutput struct {
	Body Envelope[TransferData]
}

// --- Get / Cancel / Complete ---

type TransferByIDInput struct {
	ID string `path:"id" doc:"Transfer ID"`
}

// --- List ---

type ListTransfersInput struct {
	Page      int    `query:"page" required:"false" default:"1" minimum:"1" doc:"Page (1-based)"`
	Limit     int    `query:"limit" required:"false" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	ProductID string `query:"productId" required:"false" doc:"Filter by product"`
	Branch    string `query:"branch" required:"false" doc:"Filter by branch (source or destination)"`
	Status    string `query:"status" required:"false" doc:"Filter by status (pending, completed, cancelled)"`
	Reason    string `query:"reason" required:"false" doc:"Filter by reason"`
}

type ListTransfersOutput struct {
	Body Envelope[TransferListData]
}

// --- Stats ---

type StatsInput struct {
	Branch string `query:"branch" required:"false" doc:"Scope statistics to a branch"`
}

type StatsOutput struct {
	Body Envelope[StatsData]
}

func registerTransfers(api huma.API, h Handler) {
	authed := authenticate(api, h.JWTSecret)
	canTransfer := requireCapability(api, domain.CapabilityTransferProducts)

	huma.Register(api, huma.Operation{
		OperationID: "create-transfer",
		Method:      http.MethodPost,
		Path:        "/api/v1/transfers",
		Summary:     "Request a stock transfer between branches",
		Tags:        []string{"Transfers"},
		Middlewares: huma.Middlewares{authed, canTransfer},
	}, func(ctx context.Context, input *CreateTransferInput) (*TransferOutput, error) {
		user, _ := UserFromContext(ctx)

		transfer, err := h.Transfers.Create(ctx, app.CreateTransferInput{
			ProductID:  input.Body.ProductID,
			FromBranch: input.Body.FromBranch,
			ToBranch:   input.Body.ToBranch,
			Quantity:   input.Body.Quantity,
			Reason:     domain.Reason(input.Body.Reason),
			Notes:      input.Body.Notes,
			CreatedBy:  user.ID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransferOutput{Body: ok(TransferData{Transfer: toTransferResponse(transfer)})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-transfers",
		Method:      http.MethodGet,
		Path:        "/api/v1/transfers",
		Summary:     "List transfers",
		Tags:        []string{"Transfers"},
		Middlewares: huma.Middlewares{authed},
	}, func(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error) {
		filter := domain.TransferFilter{
			Page:  input.Page,
			Limit: input.Limit,
		}
		if input.ProductID != "" {
			filter.ProductID = &input.ProductID
		}
		if input.Branch != "" {
			filter.Branch = &input.Branch
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			filter.Status = &s
		}
		if input.Reason != "" {
			r := domain.Reason(input.Reason)
			filter.Reason = &r
		}

		page, err := h.Transfers.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		transfers := make([]TransferResponse, len(page.Transfers))
		for i, t := range page.Transfers {
			transfers[i] = toTransferResponse(t)
		}

		return &ListTransfersOutput{Body: ok(TransferListData{
			Transfers: transfers,
			Pagination: Pagination{
				Page:  page.Page,
				Limit: page.Limit,
				Total: page.Total,
				Pages: page.Pages,
			},
		})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-transfer-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/transfers/stats",
		Summary:     "Aggregate transfer statistics",
		Tags:        []string{"Transfers"},
		Middlewares: huma.Middlewares{authed},
	}, func(ctx context.Context, input *StatsInput) (*StatsOutput, error) {
		filter := domain.StatsFilter{}
		if input.Branch != "" {
			filter.Branch = &input.Branch
		}

		stats, err := h.Transfers.Stats(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		var data StatsData
		data.Stats.Total = stats.Total
		data.Stats.TotalQuantity = stats.TotalQuantity
		data.Stats.ByStatus = make(map[string]StatsBucket, len(stats.ByStatus))
		for status, bucket := range stats.ByStatus {
			data.Stats.ByStatus[string(status)] = StatsBucket(bucket)
		}
		data.Stats.ByReason = make(map[string]StatsBucket, len(stats.ByReason))
		for reason, bucket := range stats.ByReason {
			data.Stats.ByReason[string(reason)] = StatsBucket(bucket)
		}

		return &StatsOutput{Body: ok(data)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-transfer",
		Method:      http.MethodGet,
		Path:        "/api/v1/transfers/{id}",
		Summary:     "Get a transfer by ID",
		Tags:        []string{"Transfers"},
		Middlewares: huma.Middlewares{authed},
	}, func(ctx context.Context, input *TransferByIDInput) (*TransferOutput, error) {
		transfer, err := h.Transfers.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransferOutput{Body: ok(TransferData{Transfer: toTransferResponse(transfer)})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-transfer",
		Method:      http.MethodPut,
		Path:        "/api/v1/transfers/{id}/cancel",
		Summary:     "Cancel a pending transfer, returning stock to the source branch",
		Tags:        []string{"Transfers"},
		Middlewares: huma.Middlewares{authed, canTransfer},
	}, func(ctx context.Context, input *TransferByIDInput) (*TransferOutput, error) {
		user, _ := UserFromContext(ctx)

		transfer, err := h.Transfers.Cancel(ctx, input.ID, user.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransferOutput{Body: ok(TransferData{Transfer: toTransferResponse(transfer)})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-transfer",
		Method:      http.MethodPut,
		Path:        "/api/v1/transfers/{id}/complete",
		Summary:     "Complete a pending transfer, delivering stock to the destination branch",
		Tags:        []string{"Transfers"},
		Middlewares: huma.Middlewares{authed, canTransfer},
	}, func(ctx context.Context, input *TransferByIDInput) (*TransferOutput, error) {
		user, _ := UserFromContext(ctx)

		transfer, err := h.Transfers.Complete(ctx, input.ID, user.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransferOutput{Body: ok(TransferData{Transfer: toTransferResponse(transfer)})}, nil
	})
}

// toHumaError translates domain errors to HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrTransferNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrBranchNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return huma.Error404NotFound(err.Error())
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return huma.Error400BadRequest(valErr.Error())
	}

	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return huma.Error400BadRequest(stockErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error400BadRequest(trErr.Error())
	}

	var skuErr *domain.SKUConflictError
	if errors.As(err, &skuErr) {
		return huma.Error409Conflict(skuErr.Error())
	}

	var codeErr *domain.CodeConflictError
	if errors.As(err, &codeErr) {
		return huma.Error409Conflict(codeErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
