package response

import "supplydesk/pkg/pagination"

// ErrorBody is the body of every non-2xx response
type ErrorBody struct {
	Error string `json:"error"`
}

// Error wraps a message in the standard error body
func Error(msg string) ErrorBody {
	return ErrorBody{Error: msg}
}

// Page is a paginated list response
type Page struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Paginated builds a Page from the parsed pagination params
func Paginated(data interface{}, total int64, p pagination.Params) Page {
	return Page{
		Data:  data,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	}
}
