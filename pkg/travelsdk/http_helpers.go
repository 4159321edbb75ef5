package travelsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tripnest/tripnest/pkg/travelsdk"

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// call performs one request and decodes the response into out (which may be
// nil when no body is expected). op names the operation for traces and
// metrics; token is attached as a bearer credential when non-empty.
func (c *SDKClient) call(
	ctx context.Context,
	op, method, path string,
	token string,
	in, out any,
	expectedStatus int,
) (err error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "travelsdk."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindRequestFailed)
			if e, ok := AsError(err); ok {
				outcome = string(e.Kind)
			} else if ctx.Err() != nil {
				outcome = "canceled"
			}
			span.SetStatus(codes.Error, outcome)
			span.RecordError(err)
		}
		span.End()
		c.Metrics.observe(op, outcome, time.Since(start).Seconds())
	}()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("travelsdk: marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("travelsdk: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &Error{Kind: KindRequestFailed, Message: "backend unreachable", cause: err}
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	return decodeJSON(resp, out, expectedStatus)
}

// decodeJSON reads the whole body once, normalising any unexpected status
// into a *Error.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Kind: KindRequestFailed, Message: "read response", cause: err}
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, b)
	}
	if target == nil || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, target); err != nil {
		return &Error{StatusCode: resp.StatusCode, Kind: KindRequestFailed, Message: "decode response", cause: err}
	}
	return nil
}
