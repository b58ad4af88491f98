// Package errs содержит бизнес-ошибки, общие для сервисов и HTTP-обработчиков.
//
// Конфликты бизнес-правил (повторная отмена, повторная оплата, вторая активная
// подписка) — ожидаемые, восстановимые ситуации: обработчики переводят их в
// 4xx-ответы с понятным текстом. Всё остальное уходит наверх как 500 с
// непрозрачным сообщением и пишется в лог.
package errs

import "errors"

var (
	// ErrNotFound запись отсутствует или скрыта фильтром по статусу.
	ErrNotFound = errors.New("not found")
	// ErrActiveSubscriptionExists у пользователя уже есть активная подписка.
	ErrActiveSubscriptionExists = errors.New("user already has an active subscription")
	// ErrAlreadyCancelled подписка уже отменена.
	ErrAlreadyCancelled = errors.New("subscription already cancelled")
	// ErrAlreadyPaid счёт уже оплачен, paid — терминальный статус.
	ErrAlreadyPaid = errors.New("invoice already paid")
	// ErrPlanNameTaken план с таким именем уже есть в каталоге.
	ErrPlanNameTaken = errors.New("plan with this name already exists")
	// ErrPlanInUse на план ссылаются подписки, удаление запрещено внешним ключом.
	ErrPlanInUse = errors.New("plan is in use by existing subscriptions")
	// ErrUserAlreadyExists имя пользователя или email уже заняты.
	ErrUserAlreadyExists = errors.New("user with this username or email already exists")
	// ErrInvalidDate дата не разбирается в формате 2006-01-02.
	ErrInvalidDate = errors.New("date must be in format 2006-01-02")
	// ErrInvalidPeriod дата окончания подписки раньше даты начала.
	ErrInvalidPeriod = errors.New("subscription end date must not be earlier than start date")
	// ErrPermissionDenied действие доступно только владельцу или администратору.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidCredentials неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPaymentNotConfirmed платёжный шлюз не подтвердил успешную оплату.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed by gateway")
)
