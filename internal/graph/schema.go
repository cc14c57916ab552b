// Package graph exposes the tracker over GraphQL.
package graph

import (
	_ "embed"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/nhle/project-tracker/internal/tracker"
)

//go:embed schema.graphql
var schemaSDL string

// NewSchema parses the schema and binds it to svc.
func NewSchema(svc *tracker.Service) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, &Resolver{svc: svc})
}

// Resolver is the root resolver for queries and mutations.
type Resolver struct {
	svc *tracker.Service
}
