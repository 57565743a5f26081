package client

type UpdateProfileRequest struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

type SetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}
