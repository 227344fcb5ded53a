package dto

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message" example:"LMS is running"`
}
