package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a client-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a persistence or transport error into a client-safe code and message.
// context names the operation, e.g. "create business" or "find compliance request".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An unexpected server error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// PostgreSQL 23505 / SQLite UNIQUE
	if strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// PostgreSQL 23503
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower, context)
	}

	// PostgreSQL 23502
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") ||
		strings.Contains(errStrLower, "not null constraint failed") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "A field value is out of range"}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An upstream service is unavailable. Please try again shortly",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "reference_id") || strings.Contains(errLower, "businesses_pkey") {
		return ErrorInfo{
			Code:    BusinessRefExists,
			Message: "A business with this reference already exists",
		}
	}

	if strings.Contains(errLower, "compliance_request_id") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "This service request already has intake details",
		}
	}

	if strings.Contains(errLower, "username") || strings.Contains(errLower, "admin_users") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This username is already taken",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errLower string, context string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The record has dependent data and cannot be deleted",
		}
	}

	if strings.Contains(errLower, "business") || strings.Contains(strings.ToLower(context), "business") {
		return ErrorInfo{
			Code:    BusinessNotFound,
			Message: "The referenced business does not exist",
		}
	}
	if strings.Contains(errLower, "compliance_request") {
		return ErrorInfo{
			Code:    CheckoutRequestNotFound,
			Message: "The referenced service request does not exist",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "The referenced record does not exist",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "business"):
		return "Business not found"
	case strings.Contains(contextLower, "compliance") || strings.Contains(contextLower, "request"):
		return "Service request not found"
	case strings.Contains(contextLower, "admin"):
		return "Account not found"
	}

	return "The requested record was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Could not save the record. Please try again shortly"
	case strings.Contains(contextLower, "update"):
		return "Could not update the record. Please try again shortly"
	case strings.Contains(contextLower, "payment"):
		return "Could not finalize the payment. Please try again shortly"
	}

	return "An unexpected server error occurred. Please try again shortly"
}

// ParseAndRespond parses err and writes it as the response body
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
