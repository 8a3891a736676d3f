package apperror

import "net/http"

var (
	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	// Retryable concurrent-modification signal; caller should resubmit.
	ErrStockConflict = New(
		CodeConflict,
		"Stock level changed during the operation, please retry",
		http.StatusConflict,
	)

	ErrProductNotFound = New(
		CodeNotFound,
		"Product not found",
		http.StatusNotFound,
	)

	ErrUserNotFound = New(
		CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrDuplicateSKU = New(
		CodeDuplicate,
		"Product with this SKU already exists",
		http.StatusConflict,
	)

	ErrDuplicateUsername = New(
		CodeDuplicate,
		"Username already exists",
		http.StatusConflict,
	)

	ErrDuplicateEmail = New(
		CodeDuplicate,
		"Email already exists",
		http.StatusConflict,
	)

	ErrInvalidMovementType = New(
		CodeInvalidInput,
		"movement_type must be stock-in, stock-out, or adjustment",
		http.StatusBadRequest,
	)

	ErrInsufficientStock = New(
		CodeInsufficientStock,
		"Insufficient stock. Cannot reduce stock below 0",
		http.StatusBadRequest,
	)

	ErrNoFieldsToUpdate = New(
		CodeInvalidInput,
		"No valid fields to update",
		http.StatusBadRequest,
	)

	ErrInvalidCredentials = New(
		CodeUnauthorized,
		"Invalid username or password",
		http.StatusUnauthorized,
	)

	ErrUserInactive = New(
		CodeForbidden,
		"Account is inactive. Please contact administrator",
		http.StatusForbidden,
	)
)
