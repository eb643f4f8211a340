package dto

// Response is the envelope of the console's JSON endpoints: the health
// check and the lookups the page scripts call.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// RateResponse answers GET /api/schemes/rate
type RateResponse struct {
	Scheme     string `json:"scheme"`
	MonthlyPct string `json:"monthlyPct"`
	YearlyPct  string `json:"yearlyPct"`
	Found      bool   `json:"found"`
}

// AccountNumberResponse answers GET /api/account-number
type AccountNumberResponse struct {
	AccNo string `json:"accNo"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
