// Package client talks to the ledger HTTP API.
package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resty.dev/v3"

	"kitchen_ledger/internal/forecast"
	"kitchen_ledger/internal/inventory"
	"kitchen_ledger/internal/recipes"
	"kitchen_ledger/internal/sales"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger API: %d: %s", e.StatusCode, e.Message)
}

type Ingredient struct {
	inventory.Ingredient
	Low bool `json:"low"`
}

type Recipe struct {
	recipes.Recipe
	Cost float64 `json:"cost"`
}

type Prediction struct {
	RecipeID        string  `json:"recipe_id"`
	Name            string  `json:"name"`
	Cost            float64 `json:"cost"`
	PredictedDemand float64 `json:"predicted_demand"`
	SuggestedPrice  float64 `json:"suggested_price"`
}

// Client is safe for concurrent use.
type Client struct {
	rc *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{rc: rc}
}

func (c *Client) Close() error {
	return c.rc.Close()
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.rc.R().SetContext(ctx).SetError(&APIError{})
}

func (c *Client) Ingredients(ctx context.Context, lowOnly bool) ([]Ingredient, error) {
	var out struct {
		Results []Ingredient `json:"results"`
	}
	req := c.request(ctx).SetResult(&out)
	if lowOnly {
		req.SetQueryParam("low", "true")
	}
	if err := do(req.Get("/ingredients")); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) Recipes(ctx context.Context) ([]Recipe, error) {
	var out struct {
		Results []Recipe `json:"results"`
	}
	if err := do(c.request(ctx).SetResult(&out).Get("/recipes")); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// RecordSale posts a sale. Shortfalls are part of a successful receipt.
func (c *Client) RecordSale(ctx context.Context, in sales.SaleInput) (*sales.Receipt, error) {
	var out sales.Receipt
	if err := do(c.request(ctx).SetBody(in).SetResult(&out).Post("/sales")); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists ledger rows, newest first. Empty arguments are not sent.
func (c *Client) History(ctx context.Context, recipeID string, from, to sales.Date) ([]sales.HistoryRow, error) {
	var out struct {
		Results []sales.HistoryRow `json:"results"`
	}
	req := c.request(ctx).SetResult(&out)
	if recipeID != "" {
		req.SetQueryParam("recipe_id", recipeID)
	}
	if !from.IsZero() {
		req.SetQueryParam("from", from.String())
	}
	if !to.IsZero() {
		req.SetQueryParam("to", to.String())
	}
	if err := do(req.Get("/sales")); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) Forecast(ctx context.Context, w forecast.Window, margin float64) ([]Prediction, error) {
	var out struct {
		Results []Prediction `json:"results"`
	}
	req := c.request(ctx).
		SetQueryParam("window", strconv.Itoa(int(w))).
		SetQueryParam("margin", strconv.FormatFloat(margin, 'f', -1, 64)).
		SetResult(&out)
	if err := do(req.Get("/forecast")); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func do(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("calling ledger API: %w", err)
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.String()}
		if e, ok := resp.Error().(*APIError); ok && e.Message != "" {
			apiErr.Message = e.Message
		}
		return apiErr
	}
	return nil
}
