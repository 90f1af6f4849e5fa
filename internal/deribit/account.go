package deribit

import "context"

// AccountSummary holds the balance view of one currency account.
type AccountSummary struct {
	Currency          string  `json:"currency"`
	Balance           float64 `json:"balance"`
	Equity            float64 `json:"equity"`
	AvailableFunds    float64 `json:"available_funds"`
	MarginBalance     float64 `json:"margin_balance"`
	InitialMargin     float64 `json:"initial_margin"`
	MaintenanceMargin float64 `json:"maintenance_margin"`
}

// Position is one open position.
type Position struct {
	InstrumentName     string  `json:"instrument_name"`
	Size               float64 `json:"size"`
	Direction          string  `json:"direction"`
	AveragePrice       float64 `json:"average_price"`
	MarkPrice          float64 `json:"mark_price"`
	FloatingProfitLoss float64 `json:"floating_profit_loss"`
}

// GetAccountSummary fetches the account summary for a currency via
// private/get_account_summary.
func (c *Client) GetAccountSummary(ctx context.Context, currency string) (*AccountSummary, error) {
	params := map[string]any{
		"currency": currency,
		"extended": true,
	}

	var result AccountSummary
	if err := c.call(ctx, "private/get_account_summary", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPositions lists the open positions for a currency via
// private/get_positions.
func (c *Client) GetPositions(ctx context.Context, currency string) ([]Position, error) {
	params := map[string]any{"currency": currency}

	var result []Position
	if err := c.call(ctx, "private/get_positions", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}
