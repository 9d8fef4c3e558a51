package dto

type AuthorResponse struct {
	Username  string  `json:"username"`
	FullName  string  `json:"fullName,omitempty"`
	Practice  *string `json:"practice,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	Limit       int   `json:"limit"`
}

type ToggleResponse struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}
