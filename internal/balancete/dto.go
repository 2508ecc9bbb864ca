package balancete

// ImportRequest is the body of POST /api/import: line items already parsed
// from the source spreadsheet by the upload collaborator, plus the ordered
// reporting periods they cover.
type ImportRequest struct {
	Ano      int          `json:"ano" validate:"required,gte=2000,lte=2100"`
	Periodos []string     `json:"periodos" validate:"required,min=1,dive,len=7"`
	Linhas   []ImportLine `json:"linhas" validate:"required,min=1,dive"`
}

// ImportLine is one raw account row of an import request.
type ImportLine struct {
	CodigoConta string             `json:"codigo_conta"`
	TituloConta string             `json:"titulo_conta" validate:"max=200"`
	Valores     map[string]float64 `json:"valores"`
}

// StatusResponse wraps the recent-processings payload.
type StatusResponse struct {
	Processings []ImportSummary `json:"processings"`
}

func (r ImportRequest) lineItems() []LineItem {
	items := make([]LineItem, 0, len(r.Linhas))
	for _, l := range r.Linhas {
		values := l.Valores
		if values == nil {
			values = map[string]float64{}
		}
		items = append(items, LineItem{
			AccountCode:  l.CodigoConta,
			AccountTitle: l.TituloConta,
			Values:       values,
		})
	}
	return items
}
