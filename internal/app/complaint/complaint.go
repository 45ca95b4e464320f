/*
Package complaint stores the tickets students raise and maintainers resolve.
*/
package complaint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// DefaultCategory is used when a complaint is filed without one.
const DefaultCategory = "general"

// ErrNotFound is returned when no complaint has the requested ID.
var ErrNotFound = errors.New("complaint: not found")

// Complaint is one ticket.
type Complaint struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	RoomNumber  string    `json:"roomNumber,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ParseStatus validates a wire status value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusInProgress, StatusResolved:
		return st, nil
	default:
		return "", fmt.Errorf("unknown complaint status %q", s)
	}
}

// ListFilter narrows List. A nil UserID lists every complaint.
type ListFilter struct {
	UserID *uuid.UUID
}
