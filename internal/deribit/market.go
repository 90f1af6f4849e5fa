package deribit

import "context"

// OrderBook is a snapshot of the book for one instrument. Levels are
// [price, amount] pairs, best first.
type OrderBook struct {
	InstrumentName string       `json:"instrument_name"`
	Timestamp      int64        `json:"timestamp"`
	Bids           [][2]float64 `json:"bids"`
	Asks           [][2]float64 `json:"asks"`
	BestBidPrice   float64      `json:"best_bid_price"`
	BestAskPrice   float64      `json:"best_ask_price"`
	LastPrice      float64      `json:"last_price"`
}

// GetOrderBook fetches a book snapshot via public/get_order_book. Real-time
// updates come through the streaming subscription instead.
func (c *Client) GetOrderBook(ctx context.Context, instrument string) (*OrderBook, error) {
	params := map[string]any{"instrument_name": instrument}

	var result OrderBook
	if err := c.call(ctx, "public/get_order_book", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
