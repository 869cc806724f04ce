// Package location provides the sources a resolver can take a position from.
package location

import (
	"context"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/resolver"
)

// Static is a position the client already knows, e.g. shared by a browser.
// A client that shared nothing has denied access.
type Static struct {
	coord *model.Coordinate
}

// NewStatic returns a provider for coord. coord may be nil.
func NewStatic(coord *model.Coordinate) *Static {
	return &Static{coord: coord}
}

func (s *Static) PermissionState(context.Context) resolver.PermissionState {
	if s.coord == nil {
		return resolver.PermissionDenied
	}
	return resolver.PermissionAuthorizedWhenInUse
}

func (s *Static) RequestPermission(ctx context.Context) (resolver.PermissionState, error) {
	return s.PermissionState(ctx), nil
}

func (s *Static) CurrentFix(ctx context.Context) (model.Coordinate, error) {
	if s.coord == nil {
		return model.Coordinate{}, ErrNoPosition
	}
	return *s.coord, ctx.Err()
}
