package dto

type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status" example:"Server is running!"`
}

type InfoResponse struct {
	Name    string `json:"name" example:"Customer Management API"`
	Version string `json:"version" example:"v1.0"`
}
