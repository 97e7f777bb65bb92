package handler

import (
	"customer-management/internal/api/handler/dto"
	"net/http"
)

const (
	apiName    = "Customer Management API"
	apiVersion = "v1.0"
)

type PublicHandler struct{}

func NewPublicHandler() *PublicHandler {
	return &PublicHandler{}
}

// Health handles GET /api/public/health
// @Summary Liveness check
// @Tags Public
// @Produce json
// @Success 200 {object} dto.StatusResponse
// @Router /public/health [get]
func (h *PublicHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, dto.StatusResponse{Status: "Server is running!"})
}

// Info handles GET /api/public/info
// @Summary API name and version
// @Tags Public
// @Produce json
// @Success 200 {object} dto.InfoResponse
// @Router /public/info [get]
func (h *PublicHandler) Info(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, dto.InfoResponse{Name: apiName, Version: apiVersion})
}
