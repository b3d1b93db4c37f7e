package dto

import "time"

type AdminLoginDTO struct {
	Pin string `json:"pin"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UpdateOrderStatusDTO struct {
	Status string `json:"status"`
}

type VisualizerColorDTO struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}
