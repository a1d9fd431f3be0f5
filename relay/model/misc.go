package model

type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    any    `json:"code"`
}

type ErrorWithStatusCode struct {
	Error
	StatusCode int `json:"status_code"`
}

// Error types, one per failure class. Handlers branch on Type, never on
// upstream message text.
const (
	ErrTypeTransport             = "transport_error"
	ErrTypeUpstreamRateLimited   = "upstream_rate_limited"
	ErrTypeUpstreamAuth          = "upstream_auth_error"
	ErrTypeUpstreamMalformed     = "upstream_malformed"
	ErrTypeUpstream              = "upstream_error"
	ErrTypeInvalidInput          = "invalid_input"
	ErrTypeTimeout               = "timeout"
	ErrTypeFetch                 = "fetch_error"
	ErrTypeParse                 = "parse_error"
	ErrTypeDegenerateGeometry    = "degenerate_geometry"
	ErrTypeAllFallbacksExhausted = "all_fallbacks_exhausted"
	ErrTypeCanceled              = "request_canceled"
)

func NewError(statusCode int, errType string, message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Error: Error{
			Message: message,
			Type:    errType,
		},
		StatusCode: statusCode,
	}
}

// IsRetryable reports whether the enhancement pipeline may retry the call.
// Only rate limits are retried; everything else propagates immediately.
func (e *ErrorWithStatusCode) IsRetryable() bool {
	return e.Type == ErrTypeUpstreamRateLimited
}
