// Package paymentprovider реализует клиент внешнего платёжного провайдера
// и проверку подписи его webhook-событий.
//
// Провайдер рассматривается как непрозрачный коллаборатор: клиент покрывает
// только создание клиентов, создание checkout-сессий подписки и чтение
// объекта подписки. Запрос выполняется один раз, без ретраев — повтор
// всего сценария остаётся на стороне вызывающего.
package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.stripe.com/v1"

// Client — HTTP-клиент платёжного провайдера.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера.
// Пустой apiURL заменяется адресом по умолчанию.
func NewClient(secretKey, apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values, idempotencyKey string) (*http.Request, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateCustomer создаёт клиента у провайдера.
func (c *Client) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	req, err := c.newRequest(ctx, http.MethodPost, "/customers", form, "")
	if err != nil {
		return nil, err
	}

	var customer Customer
	if err := c.do(req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCheckoutSession создаёт checkout-сессию подписки с пробным периодом.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer", params.CustomerID)
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("subscription_data[trial_period_days]", strconv.Itoa(params.TrialPeriodDays))
	form.Set("subscription_data[metadata][user_uid]", params.UserUID)
	form.Set("metadata[user_uid]", params.UserUID)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	req, err := c.newRequest(ctx, http.MethodPost, "/checkout/sessions", form, params.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var session CheckoutSession
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSubscription возвращает объект подписки по её идентификатору.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/subscriptions/"+subscriptionID, nil, "")
	if err != nil {
		return nil, err
	}

	var subscription Subscription
	if err := c.do(req, &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}
