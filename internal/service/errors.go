package service

import "errors"

var (
	// ErrTenantRequired indicates a tenant-scoped operation was called without a tenant.
	ErrTenantRequired = errors.New("tenant is required")
	// ErrForbidden indicates the caller may see the resource but not change it.
	ErrForbidden = errors.New("operation not permitted for this role")

	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserInactive indicates the account has been deactivated.
	ErrUserInactive = errors.New("user is inactive")

	// ErrTenantNotFound indicates the tenant does not exist.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantSlugInvalid indicates the slug has no usable characters.
	ErrTenantSlugInvalid = errors.New("slug must contain letters or digits")
	// ErrTenantSlugTaken indicates another tenant uses the slug.
	ErrTenantSlugTaken = errors.New("tenant slug already exists")
	// ErrTenantSuspended indicates the caller's tenant has been suspended.
	ErrTenantSuspended = errors.New("tenant is suspended")

	// ErrUserNotFound indicates the user does not exist in the tenant.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates another account uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrRoleNotAllowed indicates the caller cannot assign the requested role.
	ErrRoleNotAllowed = errors.New("role not allowed for caller")

	// ErrAlertNotFound indicates the alert does not exist.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrAlertEmpty indicates the alert message was empty once markup was stripped.
	ErrAlertEmpty = errors.New("alert message is empty")
	// ErrAlertTransition indicates an invalid alert status change.
	ErrAlertTransition = errors.New("invalid alert status transition")

	// ErrAttendanceNotFound indicates no attendance record matched.
	ErrAttendanceNotFound = errors.New("attendance record not found")
	// ErrAlreadyCheckedIn indicates a record already exists for the day.
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	// ErrClockTransition indicates the clock action is not valid in the current state.
	ErrClockTransition = errors.New("invalid attendance transition")
	// ErrInvalidDateRange indicates from is after to.
	ErrInvalidDateRange = errors.New("from must not be after to")

	// ErrPhotoLimit indicates the photo bound would be exceeded.
	ErrPhotoLimit = errors.New("photo limit exceeded")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the detected MIME type is not an image.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrPhotoStorageUnavailable indicates no photo store is configured.
	ErrPhotoStorageUnavailable = errors.New("photo storage is not configured")
	// ErrPhotoRequired indicates an upload request carried no file.
	ErrPhotoRequired = errors.New("at least one photo is required")

	// ErrRosterNotFound indicates the roster does not exist or is not visible.
	ErrRosterNotFound = errors.New("roster not found")
	// ErrRosterDuplicate indicates the employee already has a roster for the owner type.
	ErrRosterDuplicate = errors.New("roster already exists for this employee")
	// ErrRosterShift indicates a working shift lacks start or end times.
	ErrRosterShift = errors.New("working shifts require start and end times")

	// ErrLeaveNotFound indicates the leave request does not exist.
	ErrLeaveNotFound = errors.New("leave request not found")
	// ErrLeaveNotPending indicates the leave request was already decided.
	ErrLeaveNotPending = errors.New("leave request is no longer pending")
	// ErrLeaveDates indicates the end date precedes the start date.
	ErrLeaveDates = errors.New("end date must not be before start date")

	// ErrClientNotFound indicates the client does not exist.
	ErrClientNotFound = errors.New("client not found")
	// ErrLeadNotFound indicates the lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")
	// ErrLeadClosed indicates the lead reached a terminal status.
	ErrLeadClosed = errors.New("lead is closed")
	// ErrCommunicationTarget indicates the interaction must reference exactly one client or lead.
	ErrCommunicationTarget = errors.New("exactly one of client_id or lead_id is required")

	// ErrInvoiceNotFound indicates the invoice does not exist.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrInvoiceNotDraft indicates the invoice can no longer be edited.
	ErrInvoiceNotDraft = errors.New("only draft invoices can be modified")
	// ErrInvoiceTransition indicates an invalid invoice status change.
	ErrInvoiceTransition = errors.New("invalid invoice status transition")
	// ErrInvoiceDates indicates the due date precedes the issue date.
	ErrInvoiceDates = errors.New("due date must not be before issue date")
	// ErrInvoiceNumberExhausted indicates no free invoice number was found after retrying.
	ErrInvoiceNumberExhausted = errors.New("could not allocate invoice number, retry")
	// ErrExpenseNotFound indicates the expense does not exist.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrExpenseNotPending indicates the expense was already reviewed.
	ErrExpenseNotPending = errors.New("expense is no longer pending")
)
