package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// testLogger is a no-op logger so tests don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID        = "0b57a0fc-5f0e-4f6a-9a5a-111111111111"
	testRegistrationID = "0b57a0fc-5f0e-4f6a-9a5a-222222222222"
)

type fakeRegistrationService struct {
	registerResult *domain.Registration
	registerErr    error
	confirmResult  *domain.Registration
	confirmErr     error
	cancelErr      error
	getResult      *domain.Registration
	getErr         error
	listResult     []*domain.RegistrationWithEvent
	listErr        error

	lastEventID string
	lastRegID   string
	lastUserID  string
}

func (f *fakeRegistrationService) Register(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.lastEventID, f.lastUserID = eventID, userID
	return f.registerResult, f.registerErr
}

func (f *fakeRegistrationService) ConfirmPayment(ctx context.Context, registrationID, userID string) (*domain.Registration, error) {
	f.lastRegID, f.lastUserID = registrationID, userID
	return f.confirmResult, f.confirmErr
}

func (f *fakeRegistrationService) CancelRegistration(ctx context.Context, registrationID, userID string) error {
	f.lastRegID, f.lastUserID = registrationID, userID
	return f.cancelErr
}

func (f *fakeRegistrationService) GetRegistration(ctx context.Context, registrationID, userID string) (*domain.Registration, error) {
	f.lastRegID, f.lastUserID = registrationID, userID
	return f.getResult, f.getErr
}

func (f *fakeRegistrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	f.lastUserID = userID
	return f.listResult, f.listErr
}

type fakeQRRenderer struct {
	png []byte
	err error
}

func (f *fakeQRRenderer) RenderPNG(code string) ([]byte, error) {
	return f.png, f.err
}

func authedRequest(method, target string, eventID, registrationID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if eventID != "" {
		req.SetPathValue("eventID", eventID)
	}
	if registrationID != "" {
		req.SetPathValue("registrationID", registrationID)
	}
	return req.WithContext(middleware.SetIdentity(req.Context(), "user-1", domain.RoleAttendee))
}

func TestRegistrationController_Register(t *testing.T) {
	tests := []struct {
		name       string
		svc        *fakeRegistrationService
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			svc: &fakeRegistrationService{
				registerResult: &domain.Registration{ID: testRegistrationID, EventID: testEventID, UserID: "user-1", PaymentStatus: domain.PaymentUnpaid},
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "event full",
			svc:        &fakeRegistrationService{registerErr: domain.ErrEventFull},
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "already registered",
			svc:        &fakeRegistrationService{registerErr: domain.ErrAlreadyRegistered},
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "event not open",
			svc:        &fakeRegistrationService{registerErr: domain.ErrEventNotOpen},
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "event not found",
			svc:        &fakeRegistrationService{registerErr: domain.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger, tt.svc, &fakeQRRenderer{})

			req := authedRequest(http.MethodPost, "/events/"+testEventID+"/registrations", testEventID, "")
			rec := httptest.NewRecorder()
			ctrl.Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				var resp struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, resp.Error.Code)
			} else {
				assert.Equal(t, testEventID, tt.svc.lastEventID)
				assert.Equal(t, "user-1", tt.svc.lastUserID)
			}
		})
	}
}

func TestRegistrationController_Register_InvalidEventID(t *testing.T) {
	ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{}, &fakeQRRenderer{})

	req := authedRequest(http.MethodPost, "/events/not-a-uuid/registrations", "not-a-uuid", "")
	rec := httptest.NewRecorder()
	ctrl.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistrationController_Register_Unauthenticated(t *testing.T) {
	ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{}, &fakeQRRenderer{})

	req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/registrations", nil)
	req.SetPathValue("eventID", testEventID)
	rec := httptest.NewRecorder()
	ctrl.Register(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistrationController_ConfirmPayment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeRegistrationService{
			confirmResult: &domain.Registration{ID: testRegistrationID, PaymentStatus: domain.PaymentPaid, TicketCode: "TKT-1"},
		}
		ctrl := NewRegistrationController(testLogger, svc, &fakeQRRenderer{})

		req := authedRequest(http.MethodPost, "/registrations/"+testRegistrationID+"/payment", "", testRegistrationID)
		rec := httptest.NewRecorder()
		ctrl.ConfirmPayment(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testRegistrationID, svc.lastRegID)
	})

	t.Run("already paid", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{confirmErr: domain.ErrAlreadyPaid}, &fakeQRRenderer{})

		req := authedRequest(http.MethodPost, "/registrations/"+testRegistrationID+"/payment", "", testRegistrationID)
		rec := httptest.NewRecorder()
		ctrl.ConfirmPayment(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("foreign registration", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{confirmErr: domain.ErrForbidden}, &fakeQRRenderer{})

		req := authedRequest(http.MethodPost, "/registrations/"+testRegistrationID+"/payment", "", testRegistrationID)
		rec := httptest.NewRecorder()
		ctrl.ConfirmPayment(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRegistrationController_TicketQR(t *testing.T) {
	t.Run("renders png", func(t *testing.T) {
		svc := &fakeRegistrationService{
			getResult: &domain.Registration{ID: testRegistrationID, UserID: "user-1", PaymentStatus: domain.PaymentPaid, TicketCode: "TKT-1"},
		}
		ctrl := NewRegistrationController(testLogger, svc, &fakeQRRenderer{png: []byte("png-bytes")})

		req := authedRequest(http.MethodGet, "/registrations/"+testRegistrationID+"/ticket.png", "", testRegistrationID)
		rec := httptest.NewRecorder()
		ctrl.TicketQR(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", rec.Body.String())
	})

	t.Run("no ticket yet", func(t *testing.T) {
		svc := &fakeRegistrationService{
			getResult: &domain.Registration{ID: testRegistrationID, UserID: "user-1", PaymentStatus: domain.PaymentUnpaid},
		}
		ctrl := NewRegistrationController(testLogger, svc, &fakeQRRenderer{})

		req := authedRequest(http.MethodGet, "/registrations/"+testRegistrationID+"/ticket.png", "", testRegistrationID)
		rec := httptest.NewRecorder()
		ctrl.TicketQR(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRegistrationController_CancelRegistration(t *testing.T) {
	svc := &fakeRegistrationService{}
	ctrl := NewRegistrationController(testLogger, svc, &fakeQRRenderer{})

	req := authedRequest(http.MethodDelete, "/registrations/"+testRegistrationID, "", testRegistrationID)
	rec := httptest.NewRecorder()
	ctrl.CancelRegistration(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testRegistrationID, svc.lastRegID)
	assert.Equal(t, "user-1", svc.lastUserID)
}
