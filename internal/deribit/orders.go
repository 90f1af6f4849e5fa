package deribit

import (
	"context"
	"fmt"
)

// Order mirrors the order object returned by the trading endpoints.
type Order struct {
	OrderID           string  `json:"order_id"`
	InstrumentName    string  `json:"instrument_name"`
	Direction         string  `json:"direction"`
	Price             float64 `json:"price"`
	Amount            float64 `json:"amount"`
	FilledAmount      float64 `json:"filled_amount"`
	OrderState        string  `json:"order_state"`
	OrderType         string  `json:"order_type"`
	CreationTimestamp int64   `json:"creation_timestamp"`
}

// Trade is one execution reported alongside an order result.
type Trade struct {
	TradeID        string  `json:"trade_id"`
	InstrumentName string  `json:"instrument_name"`
	Price          float64 `json:"price"`
	Amount         float64 `json:"amount"`
	Direction      string  `json:"direction"`
	Timestamp      int64   `json:"timestamp"`
}

// OrderResult is the reply of private/buy, private/sell and private/edit.
type OrderResult struct {
	Order  Order   `json:"order"`
	Trades []Trade `json:"trades"`
}

// PlaceOrder submits a limit order. side is "buy" or "sell", selecting
// private/buy or private/sell.
func (c *Client) PlaceOrder(ctx context.Context, instrument, side string, amount, price float64) (*OrderResult, error) {
	var method string
	switch side {
	case "buy":
		method = "private/buy"
	case "sell":
		method = "private/sell"
	default:
		return nil, fmt.Errorf("deribit: invalid order side %q", side)
	}

	params := map[string]any{
		"instrument_name": instrument,
		"amount":          amount,
		"type":            "limit",
		"price":           price,
	}

	var result OrderResult
	if err := c.call(ctx, method, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EditOrder changes the amount and price of an open order via private/edit.
func (c *Client) EditOrder(ctx context.Context, orderID string, amount, price float64) (*OrderResult, error) {
	params := map[string]any{
		"order_id": orderID,
		"amount":   amount,
		"price":    price,
	}

	var result OrderResult
	if err := c.call(ctx, "private/edit", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelOrder cancels an open order via private/cancel.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	params := map[string]any{"order_id": orderID}

	var result Order
	if err := c.call(ctx, "private/cancel", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// OpenOrders lists the open orders for one instrument.
func (c *Client) OpenOrders(ctx context.Context, instrument string) ([]Order, error) {
	params := map[string]any{"instrument_name": instrument}

	var result []Order
	if err := c.call(ctx, "private/get_open_orders_by_instrument", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}
