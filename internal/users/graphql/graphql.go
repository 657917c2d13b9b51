// Package graphql exposes the read-only users query. It is a thin
// translation over the users service: same cache-aside path, no mechanism of
// its own.
package graphql

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	gql "github.com/graphql-go/graphql"

	"librisync/internal/users/models"
	"librisync/pkg/httputil"
)

// Service defines the collection read the schema resolves against.
type Service interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Handler serves GET/POST /graphql.
type Handler struct {
	schema gql.Schema
	logger *slog.Logger
}

// New builds the schema around the users service.
func New(svc Service, logger *slog.Logger) (*Handler, error) {
	userType := gql.NewObject(gql.ObjectConfig{
		Name: "User",
		Fields: gql.Fields{
			"id":    &gql.Field{Type: gql.Int},
			"name":  &gql.Field{Type: gql.String},
			"email": &gql.Field{Type: gql.String},
		},
	})

	queryType := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"users": &gql.Field{
				Type: gql.NewList(userType),
				Resolve: func(p gql.ResolveParams) (any, error) {
					return svc.ListUsers(p.Context)
				},
			},
		},
	})

	schema, err := gql.NewSchema(gql.SchemaConfig{Query: queryType})
	if err != nil {
		return nil, err
	}

	return &Handler{schema: schema, logger: logger}, nil
}

// Register mounts the graphql endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/graphql", h.HandleQuery)
	r.Post("/graphql", h.HandleQuery)
}

type postBody struct {
	Query string `json:"query"`
}

// HandleQuery executes one GraphQL request. Queries arrive either as the
// "query" URL parameter or as a JSON POST body.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("query")
	if query == "" && r.Method == http.MethodPost {
		body, ok := httputil.Decode[postBody](w, r)
		if !ok {
			return
		}
		query = body.Query
	}
	if query == "" {
		httputil.BadRequest(w, "query is required")
		return
	}

	result := gql.Do(gql.Params{
		Schema:        h.schema,
		RequestString: query,
		Context:       ctx,
	})
	if len(result.Errors) > 0 {
		h.logger.WarnContext(ctx, "graphql query failed", "errors", result.Errors)
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
