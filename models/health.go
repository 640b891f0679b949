package models

type HealthGetResponse struct {
	Status string `json:"status"`
}
