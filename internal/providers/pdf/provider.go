package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateItinerary(ctx context.Context, data ItineraryData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateItinerary(ctx context.Context, data ItineraryData) (io.Reader, error) {
	return nil, nil
}
