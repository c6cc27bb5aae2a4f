package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/infra/cachemem"
)

const (
	pinEndpoint     = "/pinning/pinFileToIPFS"
	pinListEndpoint = "/data/pinList"

	filenameCacheTTL = 5 * time.Minute
)

// Client talks to a Pinata-compatible pinning API and its public gateway.
// Pinning is the most failure-prone network hop in the pipeline, so Pin
// retries transient failures with backoff; the content-addressed contract
// makes retried uploads idempotent.
type Client struct {
	apiBaseURL     string
	gatewayBaseURL string
	jwt            string
	retries        int
	retryDelay     time.Duration
	httpDo         func(*http.Request) (*http.Response, error)
	names          *cachemem.Cache
	sleep          func(time.Duration)
}

type Options struct {
	APIBaseURL     string
	GatewayBaseURL string
	JWT            string
	Retries        int
	RetryDelay     time.Duration
	HTTPClient     *http.Client
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIBaseURL) == "" {
		return nil, errors.New("pinning api base url is required")
	}
	if strings.TrimSpace(opts.GatewayBaseURL) == "" {
		return nil, errors.New("gateway base url is required")
	}
	doer := http.DefaultClient.Do
	if opts.HTTPClient != nil {
		doer = opts.HTTPClient.Do
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = 1
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Client{
		apiBaseURL:     strings.TrimRight(opts.APIBaseURL, "/"),
		gatewayBaseURL: strings.TrimRight(opts.GatewayBaseURL, "/"),
		jwt:            opts.JWT,
		retries:        retries,
		retryDelay:     delay,
		httpDo:         doer,
		names:          cachemem.New(),
		sleep:          time.Sleep,
	}, nil
}

// Pin uploads ciphertext and returns its content identifier. Either the CID
// is usable afterwards or the call fails with nothing retrievable; partial
// objects cannot exist under content addressing.
func (c *Client) Pin(ctx context.Context, ciphertext []byte, name, originalFilename string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			c.sleep(c.retryDelay * time.Duration(attempt))
		}
		cid, retryable, err := c.pinOnce(ctx, ciphertext, name, originalFilename)
		if err == nil {
			return cid, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

func (c *Client) pinOnce(ctx context.Context, ciphertext []byte, name, originalFilename string) (cid string, retryable bool, err error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", false, err
	}
	if _, err := part.Write(ciphertext); err != nil {
		return "", false, err
	}
	if originalFilename != "" {
		meta, err := json.Marshal(map[string]string{"name": originalFilename})
		if err != nil {
			return "", false, err
		}
		if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
			return "", false, err
		}
	}
	if err := writer.Close(); err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+pinEndpoint, body)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpDo(req)
	if err != nil {
		return "", true, &domain.NetworkError{Op: "pin", Err: err}
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, &domain.NetworkError{Op: "pin", Err: err}
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return "", true, &domain.NetworkError{Op: "pin", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("pin rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", false, fmt.Errorf("pin response decode: %w", err)
	}
	if out.IpfsHash == "" {
		return "", false, errors.New("pin response missing IpfsHash")
	}
	return out.IpfsHash, false, nil
}

// Fetch retrieves pinned ciphertext through the gateway. Repeated fetches of
// the same CID return byte-identical content.
func (c *Client) Fetch(ctx context.Context, cid string) ([]byte, error) {
	if cid == "" {
		return nil, errors.New("cid is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gatewayBaseURL+"/"+url.PathEscape(cid), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpDo(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.NetworkError{Op: "fetch", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "fetch", Err: err}
	}
	return body, nil
}

// PinnedFilename looks up the display name recorded with the pin, through a
// short-lived cache. Best effort: any failure returns an empty name.
func (c *Client) PinnedFilename(ctx context.Context, cid string) string {
	if cid == "" {
		return ""
	}
	if name, ok := c.names.Get(cid); ok {
		return name
	}
	query := url.Values{}
	query.Set("hashContains", cid)
	query.Set("status", "pinned")
	query.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+pinListEndpoint+"?"+query.Encode(), nil)
	if err != nil {
		return ""
	}
	c.authorize(req)
	resp, err := c.httpDo(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}
	var out struct {
		Rows []struct {
			Metadata struct {
				Name      string            `json:"name"`
				Keyvalues map[string]string `json:"keyvalues"`
			} `json:"metadata"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ""
	}
	if len(out.Rows) == 0 {
		return ""
	}
	name := out.Rows[0].Metadata.Name
	if name == "" {
		name = out.Rows[0].Metadata.Keyvalues["name"]
	}
	if name != "" {
		c.names.Put(cid, name, filenameCacheTTL)
	}
	return name
}

func (c *Client) authorize(req *http.Request) {
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	}
}

var _ domain.ObjectStore = (*Client)(nil)
