package client

import "github.com/attractify/onboarding/internal/domain/shared"

// Client context errors. Each carries a shared code so the HTTP layer can
// map it without knowing this package.
var (
	ErrClientNotFound       = shared.NewDomainError(shared.CodeNotFound, "Client not found")
	ErrStepNotFound         = shared.NewDomainError(shared.CodeNotFound, "Onboarding step not found")
	ErrTimelineNotFound     = shared.NewDomainError(shared.CodeNotFound, "Timeline entry not found")
	ErrSessionNotFound      = shared.NewDomainError(shared.CodeNotFound, "Recording session not found")
	ErrSetupStepNotFound    = shared.NewDomainError(shared.CodeNotFound, "Analytics setup step not found")
	ErrCompanyNameRequired  = shared.NewDomainError(shared.CodeValidation, "Company name is required")
	ErrContactEmailRequired = shared.NewDomainError(shared.CodeValidation, "Contact email is required")
	ErrInvalidStepStatus    = shared.NewDomainError(shared.CodeInvalidInput, "Status must be one of: pending, in-progress, completed")
	ErrInvalidSessionStatus = shared.NewDomainError(shared.CodeInvalidInput, "Status must be one of: pending, scheduled, ready, cancelled, completed")
	ErrInvalidTransition    = shared.NewDomainError(shared.CodeInvalidState, "Step status transition is not allowed")
	ErrNoPendingStep        = shared.NewDomainError(shared.CodeInvalidState, "No pending onboarding step left")
	ErrProgressOutOfRange   = shared.NewDomainError(shared.CodeInvalidInput, "Progress must be between 0 and 100")
	ErrSessionDateRequired  = shared.NewDomainError(shared.CodeValidation, "Scheduled date is required")
	ErrSessionDuration      = shared.NewDomainError(shared.CodeValidation, "Duration must be greater than zero")
	ErrSessionCancelled     = shared.NewDomainError(shared.CodeInvalidState, "Cancelled sessions cannot change status")
	ErrInvalidMeasurementID = shared.NewDomainError(shared.CodeInvalidInput, "Measurement ID must look like G-XXXXXXXXXX")
	ErrGTMLocked            = shared.NewDomainError(shared.CodeInvalidState, "GTM configuration is available once GA4 setup is completed")
	ErrDeleteNotConfirmed   = shared.NewDomainError(shared.CodeConfirmationRequired, "Deleting a client requires confirmation")
	ErrStorageNotConfigured = shared.NewDomainError(shared.CodeUnavailable, "Recording asset storage is not configured")
)
