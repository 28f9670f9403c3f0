package assistant

import "PabrikGolang/pkg/response"

var (
	ErrEmptyCommand         = response.NewError(400, "command text is required")
	ErrCommandTooLong       = response.NewError(400, "command text too long")
	ErrSessionNotFound      = response.NewError(404, "session not found")
	ErrNoPendingPlan        = response.NewError(400, "no pending plan to confirm")
	ErrIntentNotFound       = response.NewError(404, "intent not found")
	ErrExpressionNotFound   = response.NewError(404, "learned expression not found")
	ErrIntentAlreadyExists  = response.NewError(409, "intent code already exists")
	ErrClassificationFailed = response.NewError(500, "failed to classify command")
	ErrExecutionFailed      = response.NewError(500, "failed to execute command")
	ErrToolNotRegistered    = response.NewError(500, "no tool registered for intent")
	ErrUnauthorizedAccess   = response.NewError(403, "unauthorized access to assistant features")
)
