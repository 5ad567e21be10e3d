package traversal

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/adarchive/adlib/internal/domain"
)

// graphError mirrors the Graph API error envelope.
type graphError struct {
	Message     string `json:"message"`
	Type        string `json:"type"`
	Code        int    `json:"code"`
	IsTransient bool   `json:"is_transient"`
}

// Known Graph API error codes.
const (
	codeAPIUnknown     = 1
	codeAPIService     = 2
	codeAPITooManyCall = 4
	codeUserTooMany    = 17
	codeAccessToken    = 190
	codePageRateLimit  = 32
	codeCustomRate     = 613
)

// toCanonical maps a Graph API error to the domain taxonomy.
func (e *graphError) toCanonical(statusCode int) *domain.APIError {
	apiErr := &domain.APIError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: statusCode,
	}
	switch {
	// Rate limits first: several of them arrive typed as OAuthException.
	case e.Code == codeAPITooManyCall, e.Code == codeUserTooMany,
		e.Code == codePageRateLimit, e.Code == codeCustomRate:
		apiErr.Type = domain.ErrorTypeRateLimit
	case e.Code == codeAccessToken, e.Type == "OAuthException":
		apiErr.Type = domain.ErrorTypeAuthentication
	case e.IsTransient, e.Code == codeAPIUnknown, e.Code == codeAPIService:
		apiErr.Type = domain.ErrorTypeServer
	default:
		apiErr.Type = domain.ErrorTypeInvalidRequest
	}
	return apiErr
}

// parseErrorResponse converts a non-200 response body into a domain error.
func parseErrorResponse(body []byte, statusCode int) *domain.APIError {
	var envelope struct {
		Error *graphError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return envelope.Error.toCanonical(statusCode)
	}

	errType := domain.ErrorTypeInvalidRequest
	if statusCode >= http.StatusInternalServerError {
		errType = domain.ErrorTypeServer
	}
	return &domain.APIError{
		Type:       errType,
		Message:    fmt.Sprintf("API error (status %d): %s", statusCode, string(body)),
		StatusCode: statusCode,
	}
}
