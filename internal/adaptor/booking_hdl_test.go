package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"club-booking/internal/dto/request"
	"club-booking/internal/dto/response"
	"club-booking/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBookingService struct {
	joinRes *response.JoinActivityResponse
	joinErr error
	getRes  *response.BookingResponse
	getErr  error
}

func (s *stubBookingService) JoinActivity(ctx context.Context, req *request.JoinActivityRequest) (*response.JoinActivityResponse, error) {
	return s.joinRes, s.joinErr
}

func (s *stubBookingService) GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.getRes, s.getErr
}

type stubCancelService struct {
	res *response.BookingResponse
	err error
}

func (s *stubCancelService) CancelBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.res, s.err
}

func newBookingRouter(svc usecase.BookingService, cancel usecase.CancelService) *chi.Mux {
	h := NewBookingHandler(svc, cancel, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/bookings", h.JoinActivity)
	r.Get("/api/bookings/{id}", h.GetBooking)
	r.Post("/api/bookings/{id}/cancel", h.CancelBooking)
	return r
}

func joinBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(request.JoinActivityRequest{
		SlotID: uuid.NewString(),
		UserID: uuid.NewString(),
		Method: "credits",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestJoinActivityHandlerCreated(t *testing.T) {
	svc := &stubBookingService{
		joinRes: &response.JoinActivityResponse{Outcome: response.JoinOutcomePending},
	}
	router := newBookingRouter(svc, &stubCancelService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", joinBody(t)))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Status bool                          `json:"status"`
		Data   response.JoinActivityResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Status)
	assert.Equal(t, response.JoinOutcomePending, envelope.Data.Outcome)
}

func TestJoinActivityHandlerNoCourtsIsStillCreated(t *testing.T) {
	svc := &stubBookingService{
		joinRes: &response.JoinActivityResponse{Outcome: response.JoinOutcomeNoCourts},
	}
	router := newBookingRouter(svc, &stubCancelService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", joinBody(t)))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestJoinActivityHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"slot not found", usecase.ErrSlotNotFound, http.StatusNotFound},
		{"user not found", usecase.ErrUserNotFound, http.StatusNotFound},
		{"slot full", usecase.ErrSlotFull, http.StatusConflict},
		{"already booked", usecase.ErrAlreadyBooked, http.StatusConflict},
		{"incompatible profile", usecase.ErrIncompatibleProfile, http.StatusUnprocessableEntity},
		{"insufficient funds", usecase.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"points only", usecase.ErrPointsOnly, http.StatusUnprocessableEntity},
		{"invalid input", fmt.Errorf("%w: slot ID nope", usecase.ErrInvalidInput), http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newBookingRouter(&stubBookingService{joinErr: tc.err}, &stubCancelService{})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", joinBody(t)))

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestJoinActivityHandlerRejectsBadInput(t *testing.T) {
	router := newBookingRouter(&stubBookingService{}, &stubCancelService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, err := json.Marshal(request.JoinActivityRequest{SlotID: "not-a-uuid", UserID: uuid.NewString(), Method: "cash"})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBuffer(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelBookingHandler(t *testing.T) {
	id := uuid.NewString()

	router := newBookingRouter(&stubBookingService{}, &stubCancelService{
		res: &response.BookingResponse{ID: id, Status: "cancelled"},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings/"+id+"/cancel", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	router = newBookingRouter(&stubBookingService{}, &stubCancelService{err: usecase.ErrAlreadyCancelled})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings/"+id+"/cancel", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	router = newBookingRouter(&stubBookingService{}, &stubCancelService{err: usecase.ErrBookingNotFound})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings/"+id+"/cancel", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBookingHandler(t *testing.T) {
	id := uuid.NewString()
	router := newBookingRouter(&stubBookingService{
		getRes: &response.BookingResponse{ID: id, Status: "pending"},
	}, &stubCancelService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/"+id, nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data response.BookingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, id, envelope.Data.ID)
}
