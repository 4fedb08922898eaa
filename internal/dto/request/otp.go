package request

type IssueOTPRequest struct {
	PhoneNumber    string  `json:"phone_number" validate:"required,min=10,max=15"`
	Purpose        string  `json:"purpose" validate:"required,oneof=registration login password_reset phone_verification email_verification profile_update"`
	UserID         *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Email          string  `json:"email,omitempty" validate:"omitempty,email"`
	DeliveryMethod string  `json:"delivery_method,omitempty" validate:"omitempty,oneof=sms email whatsapp voice_call"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=15"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	Purpose     string `json:"purpose" validate:"required,oneof=registration login password_reset phone_verification email_verification profile_update"`
}

type ResendOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=15"`
	Purpose     string `json:"purpose" validate:"required,oneof=registration login password_reset phone_verification email_verification profile_update"`
}
