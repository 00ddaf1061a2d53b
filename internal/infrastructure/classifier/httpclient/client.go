package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/resilience"
)

const DefaultEndpoint = "http://localhost:8000/classify"

// Client posts the form files to the classification endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
}

func New(endpoint string) *Client {
	return NewWithOptions(endpoint, Options{})
}

func NewWithOptions(endpoint string, options Options) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		executor:   options.ResilienceExecutor,
	}
}

// Classify issues exactly one request. The executor, when set, only guards
// the endpoint with a circuit breaker; failed calls are not repeated.
func (c *Client) Classify(ctx context.Context, email domain.File, attachments []domain.File) (*domain.ClassificationResult, error) {
	var result *domain.ClassificationResult
	call := func(callCtx context.Context) error {
		out, err := c.postMultipart(callCtx, email, attachments)
		if err != nil {
			return err
		}
		result = out
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "classifier.classify", call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrTransport, "classify request", err)
	}
	return result, nil
}
