package dto

type BookmarkToggleRequest struct {
	EntityType string `json:"entity_type" binding:"required,oneof=POST DISCUSSION AI_RESULT LAW_SECTION"`
	EntityID   string `json:"entity_id" binding:"required,uuid"`
}
