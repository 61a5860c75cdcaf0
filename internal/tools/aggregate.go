package tools

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"
)

// NamedQuery pairs a section name with the PromQL expression that fills it
type NamedQuery struct {
	Name  string
	Query string
}

// QueryFunc runs one instant query and returns the raw response body
type QueryFunc func(ctx context.Context, query string) (json.RawMessage, error)

// QueryAll runs the queries concurrently and returns their results in the
// order given. A failed query yields an ErrorMarker in its own section and
// does not affect the others.
func QueryAll(ctx context.Context, query QueryFunc, queries []NamedQuery) Aggregate {
	results := make(Aggregate, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		results[i].Name = q.Name
		g.Go(func() error {
			data, err := query(ctx, q.Query)
			if err != nil {
				results[i].Data = ErrorMarker(err)
				return nil
			}
			results[i].Data = data
			return nil
		})
	}
	// Workers never return an error.
	_ = g.Wait()

	return results
}
