package api

import (
	"context"
	"net/http"

	"resin-sdk-go/internal/config"
)

// Application is a resin application as listed by the pine endpoint.
type Application struct {
	ID         int64  `json:"id"`
	AppName    string `json:"app_name"`
	DeviceType string `json:"device_type"`
	Commit     string `json:"commit"`
}

// Applications lists the logged-in user's applications.
func (c *Client) Applications(ctx context.Context) ([]Application, error) {
	data, err := c.do(ctx, request{
		method:  http.MethodGet,
		baseKey: config.KeyPineEndpoint,
		path:    "/application",
		auth:    true,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		D []Application `json:"d"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return nil, err
	}
	return resp.D, nil
}
