package models

import "time"

// Допустимые имена планов. Каталог фиксированный, имя уникально.
const (
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Plan представляет тарифный план из каталога.
// Цена хранится с двумя знаками после запятой (NUMERIC(10,2) в базе).
type Plan struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`        // basic, pro или enterprise
	Price       float64   `json:"price"`       // Цена плана за период
	Description *string   `json:"description"` // Описание (может отсутствовать)
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DummyPlan используется для приёма данных плана из JSON-запроса.
type DummyPlan struct {
	Name        string  `json:"name" validate:"required,oneof=basic pro enterprise"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description,omitempty" validate:"omitempty"`
}
