package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/appointment"
)

const maxBodyBytes = 1 << 20

// Scheduler is the part of appointment.Service the HTTP layer uses.
type Scheduler interface {
	ValidateOrder(ctx context.Context, orderNumber string) (*appointment.OrderStatus, error)
	AvailableSlots(ctx context.Context) (*appointment.Availability, error)
	Book(ctx context.Context, in appointment.BookInput) (*appointment.Booking, error)
	ListAppointments(ctx context.Context) ([]appointment.AppointmentRecord, error)
	Cancel(ctx context.Context, orderNumber string) (*appointment.AppointmentRecord, error)
	Reschedule(ctx context.Context, orderNumber, newSlotTime string) (*appointment.AppointmentRecord, error)
}

func validateOrderHandler(svc Scheduler, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ValidateOrderRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		status, err := svc.ValidateOrder(r.Context(), req.OrderNumber)
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		resp := ValidateOrderResponse{
			Success:        true,
			Message:        "Order is ready for pickup.",
			OrderNumber:    status.OrderNumber,
			Status:         status.Status,
			ReadyDate:      status.ReadyDate,
			HasAppointment: status.HasAppointment,
		}
		if status.HasAppointment {
			resp.Message = "Order already has a pickup appointment."
			resp.AppointmentDate = status.AppointmentDate
			resp.AppointmentTime = status.AppointmentTime
			resp.AppointmentDateTime = appointment.AppointmentRecord{
				AppointmentDate: status.AppointmentDate,
				AppointmentTime: status.AppointmentTime,
			}.DisplayDateTime()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func availableSlotsHandler(svc Scheduler, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avail, err := svc.AvailableSlots(r.Context())
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		slots := make([]string, len(avail.Slots))
		for i, s := range avail.Slots {
			slots[i] = s.UTC().Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, AvailableSlotsResponse{
			Success:        true,
			Slots:          slots,
			TotalSlots:     avail.TotalSlots,
			AvailableCount: len(slots),
			BookedCount:    avail.BookedSlots,
		})
	}
}

func bookAppointmentHandler(svc Scheduler, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		booking, err := svc.Book(r.Context(), appointment.BookInput{
			OrderNumber:   req.OrderNumber,
			SlotTime:      req.SlotTime,
			CustomerEmail: req.CustomerEmail,
		})
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, BookAppointmentResponse{
			Success:         true,
			Message:         "Appointment booked for " + booking.Appointment.DisplayDateTime() + ".",
			OrderNumber:     booking.OrderNumber,
			SlotTime:        booking.Slot.UTC().Format(time.RFC3339),
			AppointmentDate: booking.Appointment.AppointmentDate,
			AppointmentTime: booking.Appointment.AppointmentTime,
		})
	}
}

func adminLoginHandler(auth *AdminAuth, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		token, expires, err := auth.Login(req.Password)
		if errors.Is(err, ErrUnauthorized) {
			log.Warn("admin login rejected", zap.String("request_id", GetRequestID(r.Context())))
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin password.")
			return
		}
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, AdminLoginResponse{Success: true, Token: token, ExpiresAt: expires})
	}
}

func listAppointmentsHandler(svc Scheduler, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.ListAppointments(r.Context())
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		out := make([]AppointmentResponse, len(appts))
		for i, a := range appts {
			out[i] = toAppointmentResponse(a)
		}
		writeJSON(w, http.StatusOK, ListAppointmentsResponse{Success: true, Count: len(out), Appointments: out})
	}
}

func cancelAppointmentHandler(svc Scheduler, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cancelled, err := svc.Cancel(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, AppointmentActionResponse{
			Success:     true,
			Message:     "Appointment cancelled.",
			Appointment: toAppointmentResponse(*cancelled),
		})
	}
}

func rescheduleAppointmentHandler(svc Scheduler, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RescheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		updated, err := svc.Reschedule(r.Context(), chi.URLParam(r, "orderNumber"), req.NewSlotTime)
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, AppointmentActionResponse{
			Success:     true,
			Message:     "Appointment rescheduled to " + updated.DisplayDateTime() + ".",
			Appointment: toAppointmentResponse(*updated),
		})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "Could not parse JSON request body.")
		return false
	}
	return true
}

// handleError maps service errors onto status codes. Server-side failures
// are logged and their details kept out of the response.
func handleError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	class := appointment.ClassOf(err)
	resp := ErrorResponse{Class: string(class), Hint: class.Hint()}

	var status int
	switch {
	case errors.Is(err, appointment.ErrInvalidRequest):
		status, resp.Error, resp.Message = http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, appointment.ErrOrderNotFound):
		status, resp.Error, resp.Message = http.StatusNotFound, "order_not_found", appointment.ErrOrderNotFound.Error()
	case errors.Is(err, appointment.ErrOrderNotReady):
		status, resp.Error, resp.Message = http.StatusBadRequest, "order_not_ready", appointment.ErrOrderNotReady.Error()
	case errors.Is(err, appointment.ErrAlreadyPickedUp):
		status, resp.Error, resp.Message = http.StatusBadRequest, "already_picked_up", appointment.ErrAlreadyPickedUp.Error()
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		status, resp.Error, resp.Message = http.StatusNotFound, "appointment_not_found", appointment.ErrAppointmentNotFound.Error()
	case errors.Is(err, appointment.ErrAlreadyBooked):
		status, resp.Error, resp.Message = http.StatusConflict, "already_booked", appointment.ErrAlreadyBooked.Error()
	case errors.Is(err, appointment.ErrSlotContended):
		status, resp.Error, resp.Message = http.StatusConflict, "slot_contended", appointment.ErrSlotContended.Error()
	case errors.Is(err, appointment.ErrSlotUnavailable):
		status, resp.Error, resp.Message = http.StatusConflict, "slot_unavailable", appointment.ErrSlotUnavailable.Error()
	case errors.Is(err, appointment.ErrStoreUnavailable):
		status, resp.Error, resp.Message = http.StatusServiceUnavailable, "store_unavailable", "The appointment records are temporarily unavailable."
	default:
		status, resp.Error, resp.Message = http.StatusInternalServerError, "internal_error", "Internal server error."
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Message: message, Error: code})
}
