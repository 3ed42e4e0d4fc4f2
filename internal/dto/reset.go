package dto

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordSaveRequest struct {
	Password           string `json:"password"`
	ConfirmPassword    string `json:"confirmPassword"`
	ResetPasswordToken string `json:"resetPasswordToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
