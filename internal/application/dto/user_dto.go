package dto

// ActorResponse identidad tomada del JWT (GET /api/me).
type ActorResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
