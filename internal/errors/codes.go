package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// Clients map messages from these codes.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationQueryTooShort = "VALIDATION_QUERY_TOO_SHORT"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Businesses (BUSINESS_) ====================
	BusinessNotFound     = "BUSINESS_NOT_FOUND"
	BusinessRefExists    = "BUSINESS_REFERENCE_EXISTS"
	BusinessNoSelection  = "BUSINESS_NO_SERVICES_SELECTED"
	BusinessUnknownCode  = "BUSINESS_UNKNOWN_SERVICE_CODE"
	BusinessNotOffered   = "BUSINESS_SERVICE_NOT_OFFERED"
	BusinessAllDuplicate = "BUSINESS_ALL_SERVICES_DUPLICATE"

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutRequestNotFound = "CHECKOUT_REQUEST_NOT_FOUND"
	CheckoutUnknownService  = "CHECKOUT_UNKNOWN_SERVICE"
	CheckoutNoSession       = "CHECKOUT_NO_SESSION"
	CheckoutOutOfOrder      = "CHECKOUT_STEP_OUT_OF_ORDER"
	CheckoutAlreadyPaid     = "CHECKOUT_ALREADY_PAID"
	CheckoutNotConfirmed    = "CHECKOUT_NOT_CONFIRMED"

	// ==================== Payment (PAYMENT_) ====================
	PaymentDeclined    = "PAYMENT_DECLINED"
	PaymentGatewayDown = "PAYMENT_GATEWAY_UNAVAILABLE"

	// ==================== Export (EXPORT_) ====================
	ExportFailed = "EXPORT_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
