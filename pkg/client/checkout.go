package client

import (
	httputil "bookly/pkg/http"
	"bookly/pkg/model"
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CheckoutClient talks to the checkout HTTP API of one tenant.
type CheckoutClient struct {
	httpClient *HttpClient
	tenant     string
}

func NewCheckoutClient(baseURL, tenant string) *CheckoutClient {
	return &CheckoutClient{
		httpClient: NewHttpClient(baseURL),
		tenant:     tenant,
	}
}

// AsUser sends subsequent requests on behalf of the given user.
func (c *CheckoutClient) AsUser(userID string) *CheckoutClient {
	c.httpClient.Headers[httputil.UserIDHeader] = userID
	return c
}

func (c *CheckoutClient) base() string {
	return "/api/v1/tenants/" + url.PathEscape(c.tenant)
}

func (c *CheckoutClient) ValidateItem(ctx context.Context, body any) (*model.PriceQuote, error) {
	var quote model.PriceQuote
	if err := c.post(ctx, c.base()+"/checkout/items/validate", body, http.StatusOK, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *CheckoutClient) CreateBooking(ctx context.Context, body any) (*model.Booking, error) {
	var booking model.Booking
	if err := c.post(ctx, c.base()+"/checkout/bookings", body, http.StatusCreated, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *CheckoutClient) CreateManualBooking(ctx context.Context, body any) (*model.Booking, error) {
	var booking model.Booking
	if err := c.post(ctx, c.base()+"/checkout/bookings/manual", body, http.StatusCreated, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *CheckoutClient) RelatedOpeningHours(ctx context.Context, bookableID string) (*model.OpeningCalendar, error) {
	resp, err := c.httpClient.GET(ctx, c.base()+"/bookables/"+url.PathEscape(bookableID)+"/opening-hours")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{Status: resp.StatusCode, Message: GetErrorMessage(resp)}
	}
	var calendar model.OpeningCalendar
	if err := resp.DecodeData(&calendar); err != nil {
		return nil, fmt.Errorf("failed to decode opening hours: %w", err)
	}
	return &calendar, nil
}

func (c *CheckoutClient) post(ctx context.Context, path string, body any, wantStatus int, target any) error {
	resp, err := c.httpClient.POST(ctx, path, body)
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		return &ResponseError{Status: resp.StatusCode, Message: GetErrorMessage(resp)}
	}
	if err := resp.DecodeData(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ResponseError is returned when the API answers with an unexpected status.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Message)
}
