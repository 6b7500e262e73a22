package response

// StandardApiResponse is the uniform body shape for the box office API.
// Data holds the endpoint payload (seat listings, hold receipts, bookings)
// on success; Errors holds field-level validation failures or the list of
// conflicting seats on a failed reservation.
type StandardApiResponse struct {
	Status     string      `json:"status"` // "success" or "error"
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
