package dto

type UserProfileResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	FullName     string  `json:"fullName,omitempty"`
	EnrollmentNo *string `json:"enrollmentNo,omitempty"`
	Practice     *string `json:"practice,omitempty"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}
