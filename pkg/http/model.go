package http

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"MISSING_PARAMETER"`
	Field   string                 `json:"field,omitempty" example:"coin_id"`
	Message string                 `json:"message,omitempty" example:"coin_id is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
