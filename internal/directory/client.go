package directory

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/authlib/internal/otel"
	"ely.by/authlib/internal/profiles"
)

const defaultRetryDelay = 100 * time.Millisecond

// Client talks to the identity directory. Idempotent lookups are retried
// on server errors and network failures, join notifications are never retried
type Client struct {
	http       *http.Client
	url        string
	retries    uint64
	retryDelay time.Duration
	metrics    *clientMetrics
}

func NewClient(
	http *http.Client,
	baseUrl string,
	retries uint64,
	retryDelay time.Duration,
) (*Client, error) {
	if _, err := url.ParseRequestURI(baseUrl); err != nil {
		return nil, fmt.Errorf("invalid identity directory url: %w", err)
	}

	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	metrics, err := newClientMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &Client{
		http:       http,
		url:        strings.TrimSuffix(baseUrl, "/"),
		retries:    retries,
		retryDelay: retryDelay,
		metrics:    metrics,
	}, nil
}

// FindPlayerByUuid returns nil without an error when the player is unknown to the directory
func (c *Client) FindPlayerByUuid(ctx context.Context, id uuid.UUID) (*profiles.PlayerRecord, error) {
	return c.lookup(ctx, c.url+"/profile/"+strings.ReplaceAll(id.String(), "-", ""))
}

// CheckServer returns nil without an error when the player hasn't joined the server
func (c *Client) CheckServer(ctx context.Context, username string, serverId string) (*profiles.PlayerRecord, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("serverId", serverId)

	return c.lookup(ctx, c.url+"/checkServer?"+query.Encode())
}

func (c *Client) JoinServer(ctx context.Context, username string, accessToken string, serverId string) (bool, error) {
	requestBody, _ := json.Marshal(&joinRequest{
		Username:    username,
		AccessToken: accessToken,
		ServerId:    serverId,
	})
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/joinServer", bytes.NewBuffer(requestBody))
	if err != nil {
		return false, err
	}

	request.Header.Set("Content-Type", "application/json")

	c.metrics.Requests.Add(ctx, 1)
	response, err := c.http.Do(request)
	if err != nil {
		return false, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return false, errorFromResponse(response)
	}

	var result joinResponse
	body, _ := io.ReadAll(response.Body)
	err = json.Unmarshal(body, &result)
	if err != nil {
		return false, err
	}

	return result.Success, nil
}

// Ping checks that the directory is reachable and isn't failing
func (c *Client) Ping(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url, nil)
	if err != nil {
		return err
	}

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 500 {
		return &ServerError{Status: response.StatusCode}
	}

	return nil
}

func (c *Client) lookup(ctx context.Context, url string) (*profiles.PlayerRecord, error) {
	var result *profiles.PlayerRecord
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		record, err := c.requestPlayerRecord(ctx, url)
		if err != nil {
			if isRetryable(err) {
				return retry.RetryableError(err)
			}

			return err
		}

		result = record

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) requestPlayerRecord(ctx context.Context, url string) (*profiles.PlayerRecord, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	c.metrics.Requests.Add(ctx, 1)
	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNoContent || response.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if response.StatusCode != http.StatusOK {
		return nil, errorFromResponse(response)
	}

	var result *playerResponse
	body, _ := io.ReadAll(response.Body)
	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	return result.toRecord()
}

func isRetryable(err error) bool {
	var serverErr *ServerError
	var tooManyRequestsErr *TooManyRequestsError
	var urlErr *url.Error

	return errors.As(err, &serverErr) || errors.As(err, &tooManyRequestsErr) || errors.As(err, &urlErr)
}

type joinRequest struct {
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
	ServerId    string `json:"serverId"`
}

type joinResponse struct {
	Success bool `json:"success"`
}

type playerResponse struct {
	Uuid     string           `json:"uuid"`
	Username string           `json:"username"`
	Skin     *textureResponse `json:"skin,omitempty"`
	Cloak    *textureResponse `json:"cloak,omitempty"`
}

type textureResponse struct {
	Url    string `json:"url"`
	Digest string `json:"digest"`
}

func (r *playerResponse) toRecord() (*profiles.PlayerRecord, error) {
	id, err := uuid.Parse(r.Uuid)
	if err != nil {
		return nil, fmt.Errorf("invalid player uuid %q: %w", r.Uuid, err)
	}

	record := &profiles.PlayerRecord{
		Uuid:     id,
		Username: r.Username,
	}

	record.Skin, err = r.Skin.toRecord()
	if err != nil {
		return nil, fmt.Errorf("invalid skin: %w", err)
	}

	record.Cloak, err = r.Cloak.toRecord()
	if err != nil {
		return nil, fmt.Errorf("invalid cloak: %w", err)
	}

	return record, nil
}

func (r *textureResponse) toRecord() (*profiles.TextureRecord, error) {
	if r == nil {
		return nil, nil
	}

	digest, err := hex.DecodeString(r.Digest)
	if err != nil {
		return nil, err
	}

	return &profiles.TextureRecord{
		Url:    r.Url,
		Digest: digest,
	}, nil
}

func newClientMetrics(meter metric.Meter) (*clientMetrics, error) {
	m := &clientMetrics{}
	var errors, err error

	m.Requests, err = meter.Int64Counter(
		"authlib.directory.request.sent",
		metric.WithDescription("Number of requests sent to the identity directory"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type clientMetrics struct {
	Requests metric.Int64Counter
}
