package render

import (
	"time"

	"github.com/google/uuid"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient notification. Clients hide it once ExpiresAt passes.
type Toast struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Kind       ToastKind `json:"kind"`
	DurationMS int64     `json:"duration_ms"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func NewToast(message string, kind ToastKind, d time.Duration, now time.Time) Toast {
	return Toast{
		ID:         uuid.NewString(),
		Message:    message,
		Kind:       kind,
		DurationMS: d.Milliseconds(),
		ExpiresAt:  now.Add(d),
	}
}

// Banner is the persistent error notice shown when a component failed to start.
type Banner struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

func NewBanner(component string) Banner {
	return Banner{
		Component: component,
		Message:   "Failed to initialize " + component,
	}
}
