package models

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalBookings int64 `json:"totalBookings"`
	HasNext       bool  `json:"hasNext"`
	HasPrev       bool  `json:"hasPrev"`
}

// NewPagination computes the pagination block returned by every listing
// endpoint. totalPages is a ceiling division; page is assumed >= 1.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalBookings: total,
		HasNext:       page < totalPages,
		HasPrev:       page > 1,
	}
}

type ApiResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Status:  "success",
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(message string) ApiResponse {
	return ApiResponse{
		Status:  "error",
		Message: message,
	}
}

func PaginatedResponse(data interface{}, p Pagination) ApiResponse {
	return ApiResponse{
		Status:     "success",
		Data:       data,
		Pagination: &p,
	}
}
