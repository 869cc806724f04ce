// Package autocomplete adapts place suggestion backends to the resolver's
// search interface.
package autocomplete

import (
	"context"

	"github.com/alexivanou/nearport/internal/model"
)

// Suggester serves place suggestions, e.g. the service layer.
type Suggester interface {
	SuggestPlaces(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error)
}

// Local searches this service's own place index.
type Local struct {
	suggester Suggester
	limit     int
}

// NewLocal creates a searcher that asks suggester for up to limit results.
func NewLocal(suggester Suggester, limit int) *Local {
	return &Local{suggester: suggester, limit: limit}
}

func (l *Local) SearchPlaces(ctx context.Context, query string) ([]model.CandidateAirport, error) {
	resp, err := l.suggester.SuggestPlaces(ctx, model.SuggestRequest{Query: query, Limit: l.limit})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}
