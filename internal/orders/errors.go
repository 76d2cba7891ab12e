package orders

import "fmt"

// TransportError is a failed request, Status is 0 when no response was
// received at all.
type TransportError struct {
	Status int
	Ref    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request %s: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("request %s: status %d", e.Ref, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type EmptyResponseError struct {
	Ref string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("request %s: empty response body", e.Ref)
}

// CorruptStateError is returned when a stored snapshot exists but cannot be
// decoded into orders.
type CorruptStateError struct {
	Slot string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("snapshot %q is corrupt: %v", e.Slot, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// UserInputError is an operation the caller asked for that cannot proceed
// with what was given, like searching an empty store.
type UserInputError struct {
	Reason string
}

func (e *UserInputError) Error() string {
	return e.Reason
}
