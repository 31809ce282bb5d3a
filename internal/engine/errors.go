package engine

import "fmt"

// ClassificationError reports a failed classification call. Strategy names
// the offending strategy when one is known.
type ClassificationError struct {
	Strategy string
	Message  string
	Err      error
}

func (e *ClassificationError) Error() string {
	msg := "classification failed: " + e.Message
	if e.Strategy != "" {
		msg = fmt.Sprintf("classification failed (strategy %s): %s", e.Strategy, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// AssignmentError reports a failed assignment call.
type AssignmentError struct {
	Strategy string
	Message  string
	Err      error
}

func (e *AssignmentError) Error() string {
	msg := "assignment failed: " + e.Message
	if e.Strategy != "" {
		msg = fmt.Sprintf("assignment failed (strategy %s): %s", e.Strategy, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AssignmentError) Unwrap() error {
	return e.Err
}
