package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	"go.uber.org/zap"
)

type fakeTripService struct {
	trip       *tripdomain.Trip
	getErr     error
	createErr  error
	lastCreate tripdomain.CreateTripRequest
}

func (f *fakeTripService) ListVisible(ctx context.Context, userID snowflake.ID) ([]*tripdomain.Trip, error) {
	_ = ctx
	_ = userID
	if f.trip == nil {
		return nil, nil
	}
	return []*tripdomain.Trip{f.trip}, nil
}

func (f *fakeTripService) Get(ctx context.Context, userID, tripID snowflake.ID) (*tripdomain.Trip, error) {
	_ = ctx
	_ = userID
	_ = tripID
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.trip, nil
}

func (f *fakeTripService) Create(ctx context.Context, userID snowflake.ID, req tripdomain.CreateTripRequest) (*tripdomain.Trip, error) {
	_ = ctx
	_ = userID
	f.lastCreate = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.trip, nil
}

func (f *fakeTripService) Update(ctx context.Context, userID, tripID snowflake.ID, req tripdomain.UpdateTripRequest) (*tripdomain.Trip, error) {
	_ = ctx
	_ = userID
	_ = tripID
	_ = req
	return f.trip, nil
}

func (f *fakeTripService) Delete(ctx context.Context, userID, tripID snowflake.ID) error {
	_ = ctx
	_ = userID
	_ = tripID
	return f.getErr
}

func (f *fakeTripService) ListParticipants(ctx context.Context, userID, tripID snowflake.ID) ([]*tripdomain.Participant, error) {
	_ = ctx
	_ = userID
	_ = tripID
	return nil, nil
}

func (f *fakeTripService) AddParticipant(ctx context.Context, userID, tripID snowflake.ID, req tripdomain.AddParticipantRequest) (*tripdomain.Participant, error) {
	_ = ctx
	_ = userID
	_ = tripID
	_ = req
	return nil, nil
}

func (f *fakeTripService) UpdateParticipant(ctx context.Context, userID, tripID, participantID snowflake.ID, req tripdomain.UpdateParticipantRequest) (*tripdomain.Participant, error) {
	_ = ctx
	_ = userID
	_ = tripID
	_ = participantID
	_ = req
	return nil, nil
}

func (f *fakeTripService) RemoveParticipant(ctx context.Context, userID, tripID, participantID snowflake.ID) error {
	_ = ctx
	_ = userID
	_ = tripID
	_ = participantID
	return nil
}

func (f *fakeTripService) Compare(ctx context.Context, userID, tripID snowflake.ID) (string, error) {
	_ = ctx
	_ = userID
	_ = tripID
	return "report", nil
}

func withTestUser(userID snowflake.ID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextUserIDKey, userID)
		c.Set(contextUserEmailKey, email)
		c.Next()
	}
}

func newTestRouter(register func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	register(router)
	return router
}

func sampleTrip() *tripdomain.Trip {
	return &tripdomain.Trip{
		ID:        snowflake.ID(1001),
		OwnerID:   snowflake.ID(42),
		Title:     "Coast loop",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestGetTripReturnsTrip(t *testing.T) {
	srv := &Server{
		log:     zap.NewNop(),
		tripSvc: &fakeTripService{trip: sampleTrip()},
	}
	router := newTestRouter(func(r *gin.Engine) {
		r.GET("/api/trips/:id", withTestUser(snowflake.ID(42), "owner@example.com"), srv.GetTrip)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/trips/1001", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body TripResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ID != "1001" || body.OwnerID != "42" {
		t.Fatalf("unexpected ids in response: %+v", body)
	}
}

func TestGetTripNotFoundMapsTo404(t *testing.T) {
	srv := &Server{
		log:     zap.NewNop(),
		tripSvc: &fakeTripService{getErr: tripdomain.ErrNotFound},
	}
	router := newTestRouter(func(r *gin.Engine) {
		r.GET("/api/trips/:id", withTestUser(snowflake.ID(42), "owner@example.com"), srv.GetTrip)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/trips/1001", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error.Type != "not_found" {
		t.Fatalf("expected not_found error type, got %q", body.Error.Type)
	}
}

func TestGetTripForbiddenMapsTo403(t *testing.T) {
	srv := &Server{
		log:     zap.NewNop(),
		tripSvc: &fakeTripService{getErr: tripdomain.ErrForbidden},
	}
	router := newTestRouter(func(r *gin.Engine) {
		r.GET("/api/trips/:id", withTestUser(snowflake.ID(7), "member@example.com"), srv.GetTrip)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/trips/1001", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestCreateTripValidationMapsTo400(t *testing.T) {
	srv := &Server{
		log:     zap.NewNop(),
		tripSvc: &fakeTripService{createErr: tripdomain.ErrInvalidTitle},
	}
	router := newTestRouter(func(r *gin.Engine) {
		r.POST("/api/trips", withTestUser(snowflake.ID(42), "owner@example.com"), srv.CreateTrip)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/trips",
		bytes.NewBufferString(`{"title":"","start_date":"2026-06-01T00:00:00Z","end_date":"2026-06-05T00:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Type)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Code != "invalid_title" {
		t.Fatalf("expected invalid_title code, got %+v", body.Error.Errors)
	}
}

func TestCreateTripReturns201(t *testing.T) {
	fake := &fakeTripService{trip: sampleTrip()}
	srv := &Server{log: zap.NewNop(), tripSvc: fake}
	router := newTestRouter(func(r *gin.Engine) {
		r.POST("/api/trips", withTestUser(snowflake.ID(42), "owner@example.com"), srv.CreateTrip)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/trips",
		bytes.NewBufferString(`{"title":"Coast loop","is_public":true,"start_date":"2026-06-01T00:00:00Z","end_date":"2026-06-05T00:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if fake.lastCreate.Title != "Coast loop" || !fake.lastCreate.IsPublic {
		t.Fatalf("request not forwarded to the service: %+v", fake.lastCreate)
	}
}

func TestGetTripBadIDMapsTo404(t *testing.T) {
	srv := &Server{
		log:     zap.NewNop(),
		tripSvc: &fakeTripService{trip: sampleTrip()},
	}
	router := newTestRouter(func(r *gin.Engine) {
		r.GET("/api/trips/:id", withTestUser(snowflake.ID(42), "owner@example.com"), srv.GetTrip)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/trips/not-a-number", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
