package models

import "time"

// Статусы счёта. paid — терминальный: из него переходов нет.
// pending → overdue по времени, pending|overdue → paid по подтверждению оплаты.
const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
)

// Invoice представляет счёт, выставленный по активной подписке.
// Amount — снимок цены плана на момент генерации. PlanID допускает NULL:
// счёт переживает удаление плана из каталога.
type Invoice struct {
	ID             int       `json:"id"`
	UserUID        string    `json:"user_uid"`
	PlanID         *int      `json:"plan_id"`
	SubscriptionID int       `json:"subscription_id"`
	Amount         float64   `json:"amount"`
	IssueDate      time.Time `json:"issue_date"`
	DueDate        time.Time `json:"due_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InvoiceFilter параметры выборки счетов, аналогично SubscriptionFilter.
type InvoiceFilter struct {
	UserUID string
	Status  *string
	Limit   int
	Offset  int
}

// InvoiceReminder сообщение напоминания о неоплаченном счёте,
// публикуемое в очередь уведомлений и потребляемое рассыльщиком.
type InvoiceReminder struct {
	InvoiceID int       `json:"invoice_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Amount    float64   `json:"amount"`
	DueDate   time.Time `json:"due_date"`
}
