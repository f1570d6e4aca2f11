package appointment

import (
	"strings"
	"time"
)

// Column headers of the order sheet maintained by the fulfillment team.
const (
	ColReadyOrderNumber = "Ready Order Number"
	ColPickupStatus     = "Pick up Status"
	ColStorageFee       = "Storage Fee Start From"
	ColReadyDate        = "Ready Date"
)

// Column headers of the appointment sheet, in file order.
const (
	ColOrderNumber     = "OrderNumber"
	ColAppointmentDate = "Appointment_Date"
	ColAppointmentTime = "Appointment_Time"
	ColCustomerEmail   = "Customer_Email"
	ColCreatedTime     = "Created_Time"
)

var AppointmentColumns = []string{
	ColOrderNumber,
	ColAppointmentDate,
	ColAppointmentTime,
	ColCustomerEmail,
	ColCreatedTime,
}

const defaultPickupStatus = "Ready to Pickup"

// OrderRecord is one row of the order sheet. Key holds the value of the
// ready column; an order with an empty key is not ready.
type OrderRecord struct {
	Key              string
	PickupStatus     string
	StorageFeeStatus string
	ReadyDate        string
}

func (o OrderRecord) DisplayStatus() string {
	if s := strings.TrimSpace(o.PickupStatus); s != "" {
		return s
	}
	return defaultPickupStatus
}

// AppointmentRecord is one row of the appointment sheet. Date and time are
// kept as the display strings found in the file.
type AppointmentRecord struct {
	OrderNumber     string
	AppointmentDate string
	AppointmentTime string
	CustomerEmail   string
	CreatedAt       string
}

// HasSchedule reports whether both the date and the time are filled in.
func (a AppointmentRecord) HasSchedule() bool {
	return strings.TrimSpace(a.AppointmentDate) != "" && strings.TrimSpace(a.AppointmentTime) != ""
}

// Complete reports whether every field an appointment needs to be kept is set.
func (a AppointmentRecord) Complete() bool {
	return strings.TrimSpace(a.OrderNumber) != "" && a.HasSchedule()
}

// Instant combines the stored date and time into one UTC instant.
func (a AppointmentRecord) Instant() (time.Time, error) {
	sch, err := ParseSchedule(a.AppointmentDate, a.AppointmentTime)
	if err != nil {
		return time.Time{}, err
	}
	return sch.Instant(), nil
}

// DisplayDateTime renders "DATE at TIME" for confirmation messages.
func (a AppointmentRecord) DisplayDateTime() string {
	return strings.TrimSpace(a.AppointmentDate) + " at " + strings.TrimSpace(a.AppointmentTime)
}

func newRecord(orderNumber string, slot time.Time, email string, createdAt string) AppointmentRecord {
	return AppointmentRecord{
		OrderNumber:     orderNumber,
		AppointmentDate: FormatDate(slot),
		AppointmentTime: FormatTime(slot),
		CustomerEmail:   email,
		CreatedAt:       createdAt,
	}
}
