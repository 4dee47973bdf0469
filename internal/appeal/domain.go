package appeal

import "time"

// Status is the lifecycle state of a client appeal.
type Status string

// Appeal statuses in the order a dispatcher walks them.
const (
	StatusNew       Status = "new"
	StatusScheduled Status = "scheduled"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the value is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusScheduled, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Label returns the display label for the status.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusScheduled:
		return "Scheduled"
	case StatusDone:
		return "Done"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Statuses lists every valid status for select inputs.
func Statuses() []Status {
	return []Status{StatusNew, StatusScheduled, StatusDone, StatusCancelled}
}

// Dispatcher is the employee who took the call.
type Dispatcher struct {
	ID       int64  `json:"id"`
	LastName string `json:"last_name"`
	Name     string `json:"name"`
}

// Appeal is one client request for a verification visit.
type Appeal struct {
	ID             int64     `json:"id"`
	CompanyID      int64     `json:"company_id"`
	DispatcherID   int64     `json:"dispatcher_id"`
	DateOfGet      time.Time `json:"date_of_get"`
	ClientFullName string    `json:"client_full_name"`
	Address        string    `json:"address"`
	PhoneNumber    string    `json:"phone_number"`
	AdditionalInfo string    `json:"additional_info"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Dispatcher *Dispatcher `json:"dispatcher,omitempty"`
}

// Form carries the writable appeal fields for create and update.
type Form struct {
	DispatcherID   int64  `json:"dispatcher_id" validate:"required,min=1"`
	DateOfGet      string `json:"date_of_get" validate:"required,datetime=2006-01-02"`
	ClientFullName string `json:"client_full_name" validate:"required,max=255"`
	Address        string `json:"address" validate:"required,max=255"`
	PhoneNumber    string `json:"phone_number" validate:"required,max=32"`
	AdditionalInfo string `json:"additional_info" validate:"max=1000"`
	Status         Status `json:"status" validate:"omitempty,oneof=new scheduled done cancelled"`
}
