package domain

type ErrorCode string

const (
	ErrorCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrorCodeInvalidEventType ErrorCode = "INVALID_EVENT_TYPE"
	ErrorCodeInvalidChannel   ErrorCode = "INVALID_CHANNEL"
	ErrorCodeArchiveDisabled  ErrorCode = "ARCHIVE_DISABLED"
)

type DomainError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
}

func (e *DomainError) Error() string {
	return e.Message
}
