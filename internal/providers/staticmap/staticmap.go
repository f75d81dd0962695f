// Package staticmap renders a route overview image for PDF exports.
package staticmap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tripline/tripline/internal/config"
	"go.uber.org/zap"
)

const (
	mapWidth       = 640
	mapHeight      = 360
	requestTimeout = 5 * time.Second
)

type Point struct {
	Latitude  float64
	Longitude float64
}

// Provider fetches a static map image covering the given points.
// Fetch never fails the caller: on any error it returns nil and the
// export continues without a map.
type Provider interface {
	Fetch(ctx context.Context, points []Point) []byte
}

type provider struct {
	log     *zap.Logger
	client  *resty.Client
	baseURL string
}

func New(cfg config.Config, log *zap.Logger) Provider {
	return &provider{
		log:     log.Named("staticmap"),
		client:  resty.New().SetTimeout(requestTimeout),
		baseURL: cfg.StaticMapBaseURL,
	}
}

func (p *provider) Fetch(ctx context.Context, points []Point) []byte {
	if p.baseURL == "" || len(points) == 0 {
		return nil
	}

	markers := make([]string, 0, len(points))
	for _, point := range points {
		markers = append(markers, fmt.Sprintf("%f,%f,red-pushpin", point.Latitude, point.Longitude))
	}
	center := centroid(points)

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"center":  fmt.Sprintf("%f,%f", center.Latitude, center.Longitude),
			"size":    fmt.Sprintf("%dx%d", mapWidth, mapHeight),
			"markers": strings.Join(markers, "|"),
		}).
		Get(p.baseURL)
	if err != nil {
		p.log.Warn("static map fetch failed", zap.Error(err))
		return nil
	}
	if resp.StatusCode() != 200 {
		p.log.Warn("static map fetch rejected", zap.Int("status", resp.StatusCode()))
		return nil
	}
	return resp.Body()
}

func centroid(points []Point) Point {
	var lat, lon float64
	for _, point := range points {
		lat += point.Latitude
		lon += point.Longitude
	}
	n := float64(len(points))
	return Point{Latitude: lat / n, Longitude: lon / n}
}
