package models

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// WarningResponse is a success whose side channel partially failed, like
// a hide that stuck locally but did not reach the server.
func WarningResponse(data interface{}, warning string) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Warning: warning,
	}
}

func ErrorResponse(err string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   err,
	}
}
