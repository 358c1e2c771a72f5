package domain

// Cabin é um dado de referência do catálogo, somente leitura para este serviço.
type Cabin struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MaxCapacity  int     `json:"max_capacity"`
	RegularPrice float64 `json:"regular_price"`
	Discount     float64 `json:"discount"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
}

// CabinSummary contém apenas os campos de exibição usados na listagem de reservas.
type CabinSummary struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}
