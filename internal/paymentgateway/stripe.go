// Package paymentgateway оборачивает Stripe API для создания и проверки
// платёжных интентов по счетам.
package paymentgateway

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"
)

// metadataInvoiceKey связывает интент со счётом на стороне Stripe.
const metadataInvoiceKey = "invoice_id"

// Intent урезанное представление платёжного интента Stripe.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	InvoiceID    string
}

// GatewayError ошибка, возвращённая Stripe в ответ на некорректный запрос.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %s", e.Message)
}

// Client клиент платёжного шлюза. Ключ устанавливается один раз при создании.
type Client struct {
	currency string
}

// New настраивает глобальный ключ Stripe и возвращает клиента.
func New(secretKey, currency string) *Client {
	stripe.Key = secretKey
	return &Client{currency: currency}
}

// CreateIntent создаёт платёжный интент на сумму счёта. Сумма переводится
// в минорные единицы валюты (центы).
func (c *Client) CreateIntent(invoiceID int, amount float64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(int64(math.Round(amount * 100))),
		Currency:           stripe.String(c.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata(metadataInvoiceKey, strconv.Itoa(invoiceID))

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return toIntent(pi), nil
}

// GetIntent возвращает актуальное состояние интента по его ID.
func (c *Client) GetIntent(id string) (*Intent, error) {
	pi, err := paymentintent.Get(id, nil)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		InvoiceID:    pi.Metadata[metadataInvoiceKey],
	}
}

func wrapStripeErr(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &GatewayError{Message: stripeErr.Msg}
	}
	return err
}
