package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration is a malformed or missing job/secret configuration. Fatal.
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeSourceUnavailable is a failed offer or reference fetch
	ErrorTypeSourceUnavailable ErrorType = "source_unavailable"
	// ErrorTypeNoOffers means a listing produced no usable offers
	ErrorTypeNoOffers ErrorType = "no_offers"
	// ErrorTypeParsing is a price string without an extractable number
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit is a marketplace asking us to back off
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeTimeout is a transient timeout on a network call
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeDelivery is a notification that could not be delivered
	ErrorTypeDelivery ErrorType = "delivery"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
)

// AppError carries the error type and the component that raised it
type AppError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error must stop the run
func (e *AppError) IsFatal() bool {
	return e.Type == ErrorTypeConfiguration
}

// New creates a new AppError
func New(errType ErrorType, source, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *AppError {
	return New(ErrorTypeConfiguration, "config", message, err)
}

// NewSourceUnavailable creates a new source error
func NewSourceUnavailable(source, message string, err error) *AppError {
	return New(ErrorTypeSourceUnavailable, source, message, err)
}

// NewNoOffers creates a new no-offers error
func NewNoOffers(source, message string) *AppError {
	return New(ErrorTypeNoOffers, source, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *AppError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, retryAfter string) *AppError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewTimeout creates a new timeout error
func NewTimeout(source, message string, err error) *AppError {
	return New(ErrorTypeTimeout, source, message, err)
}

// NewDelivery creates a new delivery error
func NewDelivery(source, message string, err error) *AppError {
	return New(ErrorTypeDelivery, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *AppError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *AppError {
	return New(ErrorTypeCache, source, message, err)
}

// IsType reports whether any error in err's chain is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Err
	}
	return false
}
