package etsy

import (
	"context"
	"strconv"
)

// ShopListings returns a pager over all listings for a shop.
func (c *Client) ShopListings(shopID string) *Pager {
	return c.Pages("/application/shops/"+shopID+"/listings", nil)
}

// ShopReceipts returns one page of the shop's receipts.
func (c *Client) ShopReceipts(ctx context.Context, shopID string) (Result, error) {
	return c.Get(ctx, "/application/shops/"+shopID+"/receipts", nil)
}

// Ping hits the unauthenticated ping endpoint. It needs only the API key,
// so it works before any credential exists; useful for checking that the
// key itself is valid.
func (c *Client) Ping(ctx context.Context) (Result, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		Get(c.baseURL + "/application/openapi-ping")
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp, "/application/openapi-ping")
}

// EntityID extracts a stable string id from a catalog entity field. The
// provider sends numeric ids; persisted snapshots key on their decimal
// string form.
func EntityID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case int:
		return strconv.Itoa(id)
	default:
		return ""
	}
}
