package handler

import "github.com/attractify/onboarding/internal/interfaces/http/dto"

// APIResponse is the envelope with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// DeletedData confirms a delete
type DeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
