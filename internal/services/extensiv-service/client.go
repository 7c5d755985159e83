package extensivservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wms-alloc/internal/config"
)

// Client is a thin HTTP client for the WMS API. It never caches responses;
// the only cached state lives in the injected TokenSource.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	tokens     *TokenSource
}

func NewClient(cfg config.Config, tokens *TokenSource) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
}

func (c *Client) authHeaders(ctx context.Context) (http.Header, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("Accept", "application/hal+json, application/json")
	headers.Set("Content-Type", "application/hal+json; charset=utf-8")
	if c.cfg.ExtWarehouseID != `` {
		headers.Set("3PL-Warehouse-Id", c.cfg.ExtWarehouseID)
	}
	if c.cfg.ExtCustomerID != `` {
		headers.Set("3PL-Customer-Id", c.cfg.ExtCustomerID)
	}

	return headers, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values) (interface{}, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.cfg.ExtBaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = headers

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, string(body))
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	return data, nil
}

// FetchOrdersPage pulls one page of orders with their items embedded.
func (c *Client) FetchOrdersPage(ctx context.Context, page, pageSize int) ([]map[string]interface{}, error) {
	params := url.Values{}
	params.Set("pgsiz", strconv.Itoa(pageSize))
	params.Set("pgnum", strconv.Itoa(page))
	params.Set("detail", "OrderItems")
	params.Set("itemdetail", "All")

	data, err := c.getJSON(ctx, "/orders", params)
	if err != nil {
		return nil, err
	}

	records, _ := FirstList(data, OrderListStrategies)
	return records, nil
}

// FetchInventoryPage pulls one page of receipt-level inventory.
func (c *Client) FetchInventoryPage(ctx context.Context, page, pageSize int) ([]map[string]interface{}, error) {
	params := url.Values{}
	params.Set("pgsiz", strconv.Itoa(pageSize))
	params.Set("pgnum", strconv.Itoa(page))

	data, err := c.getJSON(ctx, "/inventory", params)
	if err != nil {
		return nil, err
	}

	records, _ := FirstList(data, InventoryListStrategies)
	return records, nil
}

// PushAllocations hands a planned allocation back to the WMS allocator
// endpoint for one order.
func (c *Client) PushAllocations(ctx context.Context, orderID int, payload interface{}) error {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/orders/%d/allocator", c.cfg.ExtBaseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header = headers

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("allocator push returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
