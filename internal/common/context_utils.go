package common

import (
	"context"
	"fmt"
	"strings"

	"sentinel/internal/validation"

	"github.com/google/uuid"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code       string                 `json:"code,omitempty"`
	Error      string                 `json:"error"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

// MessageResponse is the body of the register and activate endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Code: code, Error: message}
}

// ValidateUUID parses a path or query id.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	if len(idStr) != 36 {
		return uuid.Nil, fmt.Errorf("%s must be exactly 36 characters (including hyphens)", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s contains invalid characters: %v", fieldName, err)
	}
	return id, nil
}

func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
