package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dmaros/branchstock/internal/domain"
)

// BranchResponse is the API representation of a branch.
type BranchResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Name      string `json:"name" doc:"Display name"`
	Code      string `json:"code" doc:"Short unique code"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toBranchResponse(b domain.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Code:      b.Code,
		CreatedAt: b.CreatedAt.Format(timeFormat),
	}
}

// ProductResponse is the API representation of a product.
type ProductResponse struct {
	ID         string `json:"id" doc:"Unique identifier"`
	Name       string `json:"name" doc:"Display name"`
	SKU        string `json:"sku" doc:"Stock keeping unit, unique"`
	HomeBranch string `json:"home_branch" doc:"Branch the product belongs to"`
	CreatedAt  string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt  string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		SKU:        p.SKU,
		HomeBranch: p.HomeBranch,
		CreatedAt:  p.CreatedAt.Format(timeFormat),
		UpdatedAt:  p.UpdatedAt.Format(timeFormat),
	}
}

// StockLevelResponse is one branch's stock of a product.
type StockLevelResponse struct {
	BranchID string `json:"branch_id" doc:"Branch"`
	Quantity int    `json:"quantity" doc:"Units on hand"`
}

type BranchData struct {
	Branch BranchResponse `json:"branch"`
}

type BranchListData struct {
	Branches []BranchResponse `json:"branches"`
}

type ProductData struct {
	Product ProductResponse      `json:"product"`
	Stock   []StockLevelResponse `json:"stock,omitempty"`
}

type ProductListData struct {
	Products []ProductResponse `json:"products"`
}

type StockData struct {
	ProductID string `json:"product_id"`
	BranchID  string `json:"branch_id"`
	Quantity  int    `json:"quantity" doc:"Units on hand after the receipt"`
}

type CreateBranchInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" doc:"Display name"`
		Code string `json:"code" minLength:"1" doc:"Short unique code"`
	}
}

type BranchOutput struct {
	Body Envelope[BranchData]
}

type BranchListOutput struct {
	Body Envelope[BranchListData]
}

type CreateProductInput struct {
	Body struct {
		Name       string `json:"name" minLength:"1" doc:"Display name"`
		SKU        string `json:"sku" minLength:"1" doc:"Stock keeping unit, unique"`
		HomeBranch string `json:"homeBranch" minLength:"1" doc:"Branch the product belongs to"`
	}
}

type ProductOutput struct {
	Body Envelope[ProductData]
}

type ProductByIDInput struct {
	ID string `path:"id" doc:"Product ID"`
}

type ProductListOutput struct {
	Body Envelope[ProductListData]
}

type ReceiveStockInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body struct {
		BranchID string `json:"branchId" minLength:"1" doc:"Receiving branch"`
		Quantity int    `json:"quantity" minimum:"1" doc:"Units received"`
	}
}

type StockOutput struct {
	Body Envelope[StockData]
}

func registerCatalog(api huma.API, h Handler) {
	authed := authenticate(api, h.JWTSecret)
	canManageBranches := requireCapability(api, domain.CapabilityManageBranches)
	canManageProducts := requireCapability(api, domain.CapabilityManageProducts)

	huma.Register(api, huma.Operation{
		OperationID: "create-branch",
		Method:      http.MethodPost,
		Path:        "/api/v1/branches",
		Summary:     "Create a branch",
		Tags:        []string{"Catalog"},
		Middlewares: huma.Middlewares{authed, canManageBranches},
	}, func(ctx context.Context, input *CreateBranchInput) (*BranchOutput, error) {
		branch, err := h.Catalog.CreateBranch(ctx, input.Body.Name, input.Body.Code)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &BranchOutput{Body: ok(BranchData{Branch: toBranchResponse(branch)})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-branches",
		Method:      http.MethodGet,
		Path:        "/api/v1/branches",
		Summary:     "List branches",
		Tags:        []string{"Catalog"},
		Middlewares: huma.Middlewares{authed},
	}, func(ctx context.Context, _ *struct{}) (*BranchListOutput, error) {
		branches, err := h.Catalog.ListBranches(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := make([]BranchResponse, len(branches))
		for i, b := range branches {
			out[i] = toBranchResponse(b)
		}
		return &BranchListOutput{Body: ok(BranchListData{Branches: out})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-product",
		Method:      http.MethodPost,
		Path:        "/api/v1/products",
		Summary:     "Create a product",
		Tags:        []string{"Catalog"},
		Middlewares: huma.Middlewares{authed, canManageProducts},
	}, func(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
		product, err := h.Catalog.CreateProduct(ctx, input.Body.Name, input.Body.SKU, input.Body.HomeBranch)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ProductOutput{Body: ok(ProductData{Product: toProductResponse(product)})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Tags:        []string{"Catalog"},
		Middlewares: huma.Middlewares{authed},
	}, func(ctx context.Context, _ *struct{}) (*ProductListOutput, error) {
		products, err := h.Catalog.ListProducts(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := make([]ProductResponse, len(products))
		for i, p := range products {
			out[i] = toProductResponse(p)
		}
		return &ProductListOutput{Body: ok(ProductListData{Products: out})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-product",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}",
		Summary:     "Get a product with its per-branch stock levels",
		Tags:        []string{"Catalog"},
		Middlewares: huma.Middlewares{authed},
	}, func(ctx context.Context, input *ProductByIDInput) (*ProductOutput, error) {
		product, levels, err := h.Catalog.GetProduct(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		stock := make([]StockLevelResponse, len(levels))
		for i, lvl := range levels {
			stock[i] = StockLevelResponse{BranchID: lvl.BranchID, Quantity: lvl.Quantity}
		}
		return &ProductOutput{Body: ok(ProductData{
			Product: toProductResponse(product),
			Stock:   stock,
		})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "receive-stock",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/stock",
		Summary:     "Record received stock for a product at a branch",
		Tags:        []string{"Catalog"},
		Middlewares: huma.Middlewares{authed, canManageProducts},
	}, func(ctx context.Context, input *ReceiveStockInput) (*StockOutput, error) {
		quantity, err := h.Catalog.ReceiveStock(ctx, input.ID, input.Body.BranchID, input.Body.Quantity)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StockOutput{Body: ok(StockData{
			ProductID: input.ID,
			BranchID:  input.Body.BranchID,
			Quantity:  quantity,
		})}, nil
	})
}
