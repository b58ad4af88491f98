package models

import "time"

// Статусы подписки. У пользователя может быть не больше одной подписки
// в статусе active — инвариант закреплён частичным уникальным индексом в базе.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Subscription представляет подписку пользователя на план.
// Отмена — мягкая: запись остаётся, меняется только статус.
type Subscription struct {
	ID        int       `json:"id"`
	UserUID   string    `json:"user_uid"`
	PlanID    int       `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DummySubscription используется для приёма данных подписки из JSON-запроса.
// Даты приходят строками в формате 2006-01-02; формат проверяется в сервисе
// при парсинге, а не тегом валидатора.
type DummySubscription struct {
	PlanID    int    `json:"plan_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// SubscriptionFilter параметры выборки подписок: владелец (пустой для
// администратора — видны все) и необязательный точный фильтр по статусу.
type SubscriptionFilter struct {
	UserUID string  // Пустая строка — без ограничения по владельцу
	Status  *string // nil — без фильтра по статусу
	Limit   int
	Offset  int
}
