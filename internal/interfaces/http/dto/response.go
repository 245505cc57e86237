package dto

import "time"

// Response is the JSON envelope of every API reply
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// ValidationDetail names one rejected field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta describes the page of a list reply
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// OK wraps data in a successful envelope
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Page wraps one page of a list
func Page(data any, total int64, page, size int) Response {
	meta := &Meta{Total: total, Page: page, PageSize: size}
	if size > 0 {
		meta.TotalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Response{Success: true, Data: data, Meta: meta}
}

// Fail builds an error envelope. code is resolved to its wire form.
func Fail(code, message, requestID string) Response {
	wire, _ := Resolve(code)
	return Response{Error: &ErrorInfo{
		Code:      wire,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}}
}

// Invalid is the 400 envelope listing rejected fields
func Invalid(message, requestID string, details []ValidationDetail) Response {
	resp := Fail(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
