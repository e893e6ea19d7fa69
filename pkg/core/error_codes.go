package core

import "fmt"

// APICode is an exchange-side error code carried in a {"code":..,"msg":..} payload.
type APICode int

// Exchange error codes a listen-key caller is likely to meet.
const (
	CodeUnknown          APICode = -1000
	CodeDisconnected     APICode = -1001
	CodeUnauthorized     APICode = -1002
	CodeTooManyRequests  APICode = -1003
	CodeInvalidTimestamp APICode = -1021
	CodeInvalidSignature APICode = -1022
	CodeBadSymbol        APICode = -1121
	CodeInvalidListenKey APICode = -1125
	CodeRejectedAPIKey   APICode = -2015
)

// APIError is the error payload the exchange returns in a JSON body.
// The dispatcher never inspects it; callers use Response.APIError.
type APIError struct {
	Code APICode `json:"code"`
	Msg  string  `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange error %d: %s", e.Code, e.Msg)
}

// IsAuth reports whether the exchange rejected the key or signature.
func (e *APIError) IsAuth() bool {
	switch e.Code {
	case CodeUnauthorized, CodeInvalidSignature, CodeRejectedAPIKey:
		return true
	}
	return false
}

// IsListenKeyGone reports whether the listen key is unknown to the exchange,
// typically because it expired or was revoked.
func (e *APIError) IsListenKeyGone() bool {
	return e.Code == CodeInvalidListenKey
}
