package dto

// PageRequest paginación por limit/offset para listados de bodegas y documentos.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

const defaultPageLimit = 20

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// FetchLimit límite a pedir al repositorio: uno más que la página para saber si hay siguiente.
func (p PageRequest) FetchLimit() int { return p.Limit + 1 }

// PageResponse metadatos de página. Count es lo devuelto en esta página;
// HasMore indica que existe al menos un registro después de Offset+Count.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// TrimPage recorta lo leído con FetchLimit a la página pedida y arma sus metadatos.
func TrimPage[T any](p PageRequest, fetched []T) ([]T, PageResponse) {
	page := PageResponse{Limit: p.Limit, Offset: p.Offset}
	if len(fetched) > p.Limit {
		fetched = fetched[:p.Limit]
		page.HasMore = true
	}
	page.Count = len(fetched)
	return fetched, page
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
