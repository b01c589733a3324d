package dto

// CreateEquipmentRequest represents a new equipment registration
type CreateEquipmentRequest struct {
	SerialNumber string `json:"serial_number"`
	Name         string `json:"name" binding:"required"`
	Partition    string `json:"partition" binding:"required"`
}

// UpdateEquipmentRequest represents an equipment rename. The stored row is
// archived and replaced rather than edited in place.
type UpdateEquipmentRequest struct {
	SerialNumber string `json:"serial_number"`
	Name         string `json:"name" binding:"required"`
	Partition    string `json:"partition" binding:"required"`
}

// ListResponse is the envelope for all collection endpoints
type ListResponse struct {
	Results any `json:"results"`
	Count   int `json:"count"`
}
