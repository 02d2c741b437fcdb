package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RESTWidget talks to an orders-style checkout API: create an order, let the
// buyer approve it out of band, then capture it.
type RESTWidget struct {
	baseURL  string
	clientID string
	secret   string
	hc       *http.Client
}

func NewRESTWidget(baseURL, clientID, secret string) *RESTWidget {
	return &RESTWidget{
		baseURL:  baseURL,
		clientID: clientID,
		secret:   secret,
		hc:       &http.Client{Timeout: 30 * time.Second},
	}
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

func (w *RESTWidget) CreateOrder(ctx context.Context, order Order) (string, string, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"description": order.Description,
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         order.Value,
			},
		}},
	}

	var or orderResponse
	if err := w.post(ctx, "/v2/checkout/orders", body, &or); err != nil {
		return "", "", err
	}

	approveURL := ""
	for _, link := range or.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
		}
	}
	if or.ID == "" || approveURL == "" {
		return "", "", fmt.Errorf("malformed order response")
	}
	return or.ID, approveURL, nil
}

func (w *RESTWidget) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	var or orderResponse
	if err := w.post(ctx, "/v2/checkout/orders/"+orderID+"/capture", nil, &or); err != nil {
		return nil, err
	}
	if or.Status != "COMPLETED" {
		return nil, fmt.Errorf("capture not completed: %s", or.Status)
	}
	return &Capture{OrderID: or.ID, Status: or.Status}, nil
}

func (w *RESTWidget) post(ctx context.Context, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(w.clientID, w.secret)

	resp, err := w.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
