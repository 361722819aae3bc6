package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dmaros/branchstock/internal/auth"
	"github.com/dmaros/branchstock/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

// UserFromContext retrieves the authenticated user stored by the auth middleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}

// authenticate returns operation middleware that validates the Bearer token
// and stores the authenticated user in the request context.
func authenticate(api huma.API, secret string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}

		claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next(huma.WithValue(ctx, userKey, claims.User()))
	}
}

// requireCapability returns operation middleware that rejects callers
// lacking the given capability. It must run after authenticate.
func requireCapability(api huma.API, cap domain.Capability) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		user, authed := UserFromContext(ctx.Context())
		if !authed {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "not authenticated")
			return
		}
		if !user.HasCapability(cap) {
			huma.WriteErr(api, ctx, http.StatusForbidden, "missing capability "+string(cap))
			return
		}
		next(ctx)
	}
}

// --- Login ---

type LoginInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" maxLength:"100" doc:"Account username"`
		Password string `json:"password" minLength:"1" doc:"Account password"`
	}
}

// LoginData is the payload returned on successful login.
type LoginData struct {
	Token        string              `json:"token" doc:"Bearer token for subsequent requests"`
	UserID       string              `json:"user_id" doc:"Authenticated user ID"`
	Username     string              `json:"username" doc:"Authenticated username"`
	Role         domain.Role         `json:"role" doc:"User role"`
	Capabilities []domain.Capability `json:"capabilities,omitempty" doc:"Granted capabilities"`
}

type LoginOutput struct {
	Body Envelope[LoginData]
}

func registerAuth(api huma.API, users domain.UserRepository, secret string) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Exchange credentials for a bearer token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		user, err := users.GetUserByUsername(ctx, input.Body.Username)
		if err != nil || !auth.CheckPassword(user.PasswordHash, input.Body.Password) {
			// Same response for unknown user and wrong password.
			return nil, huma.Error401Unauthorized("invalid credentials")
		}

		token, err := auth.GenerateToken(secret, user)
		if err != nil {
			return nil, huma.Error500InternalServerError("internal server error")
		}

		return &LoginOutput{Body: ok(LoginData{
			Token:        token,
			UserID:       user.ID,
			Username:     user.Username,
			Role:         user.Role,
			Capabilities: user.Capabilities,
		})}, nil
	})
}
