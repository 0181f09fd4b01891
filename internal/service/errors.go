package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrTenantNotFound is returned when a tenant is not found
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrCustomerNotFound is returned when a customer does not exist for the tenant
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrTenantForbidden is returned when the caller may not act for the tenant
	ErrTenantForbidden = errors.New("access to tenant denied")

	// ErrRunInProgress is returned when a nightly pass is already running
	ErrRunInProgress = errors.New("intelligence run already in progress")
)
