package response

// IssueOTPResponse reports an issuance. FallbackOTP is only populated when
// delivery could not be confirmed through a real transport; its presence tells
// the calling layer to display the code to the user directly.
type IssueOTPResponse struct {
	Success     bool   `json:"success"`
	Fallback    bool   `json:"fallback,omitempty"`
	FallbackOTP string `json:"fallback_otp,omitempty"`
	RetryAfter  int    `json:"retry_after,omitempty"`
}

type VerifyOTPResponse struct {
	Success bool `json:"success"`
}

type ResendOTPResponse struct {
	Success     bool   `json:"success"`
	Fallback    bool   `json:"fallback,omitempty"`
	FallbackOTP string `json:"fallback_otp,omitempty"`
	RetryAfter  int    `json:"retry_after,omitempty"`
}

// ErrorCode payloads give callers the machine-readable reason while the
// message stays uniform for the invalid/expired class.
type ErrorCode struct {
	Code       string `json:"code"`
	RetryAfter int    `json:"retry_after,omitempty"`
}
