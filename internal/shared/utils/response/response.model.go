package response

// ErrorBody is the shape of every non-2xx response. Clients key off the
// message plus the HTTP status; 401 doubles as "session expired".
type ErrorBody struct {
	Message string `json:"message"`
}

// ListMeta carries pagination info alongside list payloads.
type ListMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}
