package dto

// SendMessageRequest payload for direct messages.
type SendMessageRequest struct {
	ToUserID  string `json:"to_user_id"`
	ProjectID string `json:"project_id"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
}
