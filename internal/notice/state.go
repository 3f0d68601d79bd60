// Package notice tracks the review banner shown to an admin: at most one
// success or error message, auto-dismissed after a delay, plus the id of the
// request whose action is in flight.
package notice

import (
	"errors"
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

// Kind is the banner variant.
type Kind string

const (
	KindIdle    Kind = "idle"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// State is the banner value. Kind and Message change together, so a success
// and an error can never be visible at once. ProcessingID is independent.
type State struct {
	Kind         Kind   `json:"kind"`
	Message      string `json:"message,omitempty"`
	ProcessingID string `json:"processingId,omitempty"`
}

// Idle is the zero banner.
func Idle() State {
	return State{Kind: KindIdle}
}

// Start marks targetID as in flight and clears any message.
func Start(targetID string) State {
	return State{Kind: KindIdle, ProcessingID: targetID}
}

// Succeed ends processing and shows msg as a success.
func Succeed(msg string) State {
	return State{Kind: KindSuccess, Message: msg}
}

// Fail ends processing and shows msg as an error.
func Fail(msg string) State {
	return State{Kind: KindError, Message: msg}
}

// Dismiss clears the message and leaves ProcessingID alone.
func Dismiss(s State) State {
	return State{Kind: KindIdle, ProcessingID: s.ProcessingID}
}

// Processing reports whether targetID is the action in flight.
func (s State) Processing(targetID string) bool {
	return targetID != "" && s.ProcessingID == targetID
}

// Fallback is the generic message for a failed action such as "approve request".
func Fallback(action string) string {
	return fmt.Sprintf("Failed to %s. Please try again.", action)
}

// ErrorMessage resolves the text shown for err, using fallback when err has none.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		if msg := strings.TrimSpace(appErr.Message); msg != "" && appErr.ClientFacing() {
			return msg
		}
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
