package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"
	"txpipeline/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("internal/fetch")

const TransactionsPath = "/transactions"

// StatusError is returned when the API answers with a non 2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("transactions api responded with status %d: %s", e.Code, e.Body)
}

type ClientOptions struct {
	BaseUrl string
	Timeout time.Duration
	// if set, every HTTP exchange is dumped into it while debug logging is on
	Output restyutil.InstrumentOutput
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if baseUrl.Scheme != "http" && baseUrl.Scheme != "https" {
		return nil, fmt.Errorf("api url must be http or https, got %q", opts.BaseUrl)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	restyutil.InstrumentClient(client, otel.Tracer("internal/fetch/http"), opts.Output)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// FetchTransactions issues a single request for the transactions envelope and
// returns the body untouched.
func (c *Client) FetchTransactions(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "fetch:FetchTransactions")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(TransactionsPath)
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
		body := res.String()
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, StatusError{Code: res.StatusCode(), Body: body}
	}

	span.SetAttributes(attribute.Int("response.bytes", len(res.Body())))
	return res.Body(), nil
}
