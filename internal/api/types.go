package api

import (
	"time"

	"github.com/hackgods/pickup-appointment-scheduling/internal/appointment"
)

type ValidateOrderRequest struct {
	OrderNumber string `json:"orderNumber"`
}

type ValidateOrderResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	OrderNumber         string `json:"orderNumber"`
	Status              string `json:"status"`
	ReadyDate           string `json:"readyDate,omitempty"`
	HasAppointment      bool   `json:"hasAppointment"`
	AppointmentDate     string `json:"appointmentDate,omitempty"`
	AppointmentTime     string `json:"appointmentTime,omitempty"`
	AppointmentDateTime string `json:"appointmentDateTime,omitempty"`
}

type AvailableSlotsResponse struct {
	Success        bool     `json:"success"`
	Slots          []string `json:"slots"`
	TotalSlots     int      `json:"totalSlots"`
	AvailableCount int      `json:"availableCount"`
	BookedCount    int      `json:"bookedCount"`
}

type BookAppointmentRequest struct {
	OrderNumber   string `json:"orderNumber"`
	SlotTime      string `json:"slotTime"`
	CustomerEmail string `json:"customerEmail"`
}

type BookAppointmentResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	OrderNumber     string `json:"orderNumber"`
	SlotTime        string `json:"slotTime"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RescheduleRequest struct {
	NewSlotTime string `json:"newSlotTime"`
}

type AppointmentResponse struct {
	OrderNumber     string `json:"orderNumber"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	CustomerEmail   string `json:"customerEmail"`
	CreatedTime     string `json:"createdTime"`
}

type ListAppointmentsResponse struct {
	Success      bool                  `json:"success"`
	Count        int                   `json:"count"`
	Appointments []AppointmentResponse `json:"appointments"`
}

type AppointmentActionResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Appointment AppointmentResponse `json:"appointment"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Class   string `json:"class,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func toAppointmentResponse(a appointment.AppointmentRecord) AppointmentResponse {
	return AppointmentResponse{
		OrderNumber:     a.OrderNumber,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		CustomerEmail:   a.CustomerEmail,
		CreatedTime:     a.CreatedAt,
	}
}
