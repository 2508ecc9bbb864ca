package depara

// UpdateClassificationRequest is the body of PUT /api/depara/{account_code}.
type UpdateClassificationRequest struct {
	Classificacao string `json:"classificacao" validate:"required,max=120"`
	GrupoDF       string `json:"grupo_df,omitempty" validate:"omitempty,max=120"`
}

// ListResponse wraps the classification table payload.
type ListResponse struct {
	Depara []Entry `json:"depara"`
	Total  int     `json:"total"`
}

// PendingResponse wraps the pending-review payload.
type PendingResponse struct {
	Pending []Entry `json:"pending"`
	Total   int     `json:"total"`
}

// ClassificationsResponse lists the known classification labels.
type ClassificationsResponse struct {
	Classifications []string `json:"classifications"`
}

// UpdateResponse reports the outcome of a classification update.
type UpdateResponse struct {
	Entry         Entry `json:"entry"`
	NewLineNeeded bool  `json:"new_df_line_needed"`
}
