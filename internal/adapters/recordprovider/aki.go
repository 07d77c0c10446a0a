package recordprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Amund211/gacharecord/internal/constants"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/ratelimiting"
	"github.com/Amund211/gacharecord/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const getRecordsMaxOperationTime = 2 * time.Second

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type RequestLimiter interface {
	Limit(ctx context.Context, maxOperationTime time.Duration, operation func()) bool
}

type akiRecordProviderMetricsCollection struct {
	requestCount metric.Int64Counter
	pullCount    metric.Int64Counter
}

func setupAkiRecordProviderMetrics(meter metric.Meter) (akiRecordProviderMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("recordprovider/requests")
	if err != nil {
		return akiRecordProviderMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	pullCount, err := meter.Int64Counter("recordprovider/returned_pulls")
	if err != nil {
		return akiRecordProviderMetricsCollection{}, fmt.Errorf("failed to create pull count metric: %w", err)
	}

	return akiRecordProviderMetricsCollection{
		requestCount: requestCount,
		pullCount:    pullCount,
	}, nil
}

type akiRecordProvider struct {
	httpClient HttpClient
	limiter    RequestLimiter

	metrics akiRecordProviderMetricsCollection
	tracer  trace.Tracer
}

func NewAkiRecordProvider(httpClient HttpClient, nowFunc func() time.Time, afterFunc func(time.Duration) <-chan time.Time) (*akiRecordProvider, error) {
	const name = "gacharecord/recordprovider/aki"

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupAkiRecordProviderMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	// A full sync is 7 requests, keep it from bursting
	limiter := ratelimiting.NewWindowLimitRequestLimiter(5, time.Second, nowFunc, afterFunc)

	return &akiRecordProvider{
		httpClient: httpClient,
		limiter:    limiter,

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

func (p *akiRecordProvider) countRequest(ctx context.Context, category domain.Category, outcome string) {
	p.metrics.requestCount.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.Int("category", int(category)),
			attribute.String("outcome", outcome),
		),
	)
}

func (p *akiRecordProvider) GetRecords(ctx context.Context, descriptor domain.Descriptor, category domain.Category) ([]domain.PullRecord, error) {
	ctx, span := p.tracer.Start(ctx, "AkiRecordProvider.GetRecords", trace.WithAttributes(
		attribute.Int("category", int(category)),
		attribute.String("region", descriptor.Region.String()),
	))
	defer span.End()

	body, err := json.Marshal(newRecordRequest(descriptor, category))
	if err != nil {
		err := fmt.Errorf("failed to marshal record request: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	endpoint := endpointForRegion(descriptor.Region)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)
	req.Header.Set("Content-Type", "application/json")

	var statusCode int
	var data []byte
	start := time.Now()
	ran := p.limiter.Limit(ctx, getRecordsMaxOperationTime, func() {
		var resp *http.Response
		resp, err = p.httpClient.Do(req)
		if err != nil {
			err = fmt.Errorf("%w: failed to send request: %w", domain.ErrNetworkFailure, err)
			return
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			err = fmt.Errorf("%w: failed to read response body: %w", domain.ErrNetworkFailure, err)
			return
		}
	})
	if !ran {
		p.countRequest(ctx, category, "not_sent")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("record request not sent: %w", ctxErr)
		}
		err := fmt.Errorf("%w: too many requests to the record service", domain.ErrNetworkFailure)
		reporting.Report(ctx, err)
		return nil, err
	}

	if err != nil {
		p.countRequest(ctx, category, "network_failure")
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, context.Canceled) {
			reporting.Report(ctx, err)
		}
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(
		ctx,
		"Record request completed",
		"category", int(category),
		"status", statusCode,
		"duration", time.Since(start).String(),
	)

	records, err := recordsFromResponse(statusCode, data)
	if errors.Is(err, domain.ErrCredentialRejected) {
		// Stale session, not a bug
		p.countRequest(ctx, category, "rejected")
		span.SetStatus(codes.Error, "credential rejected")
		return nil, err
	} else if err != nil {
		p.countRequest(ctx, category, "network_failure")
		span.SetStatus(codes.Error, err.Error())
		extra := map[string]string{
			"status": strconv.Itoa(statusCode),
		}
		if len(data) < 1000 {
			extra["data"] = string(data)
		}
		reporting.Report(ctx, err, extra)
		return nil, err
	}

	p.countRequest(ctx, category, "ok")
	p.metrics.pullCount.Add(ctx, int64(len(records)), metric.WithAttributes(attribute.Int("category", int(category))))

	return records, nil
}

// Type assertion
var _ RecordProvider = (*akiRecordProvider)(nil)
