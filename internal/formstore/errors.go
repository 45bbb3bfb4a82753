package formstore

// StoreError is a failure class callers can match with errors.Is.
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	ErrUnrecognizedAddress  StoreError = "unrecognized address"
	ErrUnsupportedOperation StoreError = "operation not supported on address"
	ErrNotFound             StoreError = "form not found"
	ErrInvalidForm          StoreError = "invalid form"
	ErrInvalidProjection    StoreError = "invalid projection"
)
