package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"ssoetl/internal/logger"
)

// DefaultBaseURL is the public query endpoint of the statewide SSO layer.
const DefaultBaseURL = "https://gis.adem.alabama.gov/arcgis/rest/services/SSOs_ALL_OB_ID/MapServer/0/query"

// DefaultPageSize matches the layer's maximum record count per request.
const DefaultPageSize = 2000

// ErrRequestFailed wraps non-2xx responses from the layer.
var ErrRequestFailed = errors.New("arcgis request failed")

// Config holds the client settings. Zero values fall back to defaults.
type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	PageSize int

	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

// Client pages through the feature layer's query endpoint.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
	log      zerolog.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		pageSize: cfg.PageSize,
		http:     httpClient,
		log:      logger.WithComponent("arcgis"),
	}
}

type featurePage struct {
	Features []struct {
		Attributes map[string]any `json:"attributes"`
		Geometry   *struct {
			X *float64 `json:"x"`
			Y *float64 `json:"y"`
		} `json:"geometry"`
	} `json:"features"`
}

// Fetch downloads every record matching q, following the layer's
// offset-based pagination. limit > 0 caps the number of records returned.
func (c *Client) Fetch(ctx context.Context, q Query, limit int) ([]Record, error) {
	params, err := q.Params()
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		params.Set("token", c.token)
	}

	var records []Record
	offset := 0
	for {
		params.Set("resultOffset", strconv.Itoa(offset))
		params.Set("resultRecordCount", strconv.Itoa(c.pageSize))

		page, err := c.fetchPage(ctx, params.Encode())
		if err != nil {
			return nil, err
		}
		if len(page.Features) == 0 {
			break
		}

		for _, feature := range page.Features {
			attrs := feature.Attributes
			if attrs == nil {
				attrs = map[string]any{}
			}
			if feature.Geometry != nil {
				attrs["x"] = deref(feature.Geometry.X)
				attrs["y"] = deref(feature.Geometry.Y)
			}
			records = append(records, Normalize(attrs))
			if limit > 0 && len(records) >= limit {
				return records[:limit], nil
			}
		}

		offset += len(page.Features)
		c.log.Debug().Int("offset", offset).Int("records", len(records)).Msg("fetched page")
	}

	c.log.Info().Int("records", len(records)).Msg("layer download complete")
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, query string) (*featurePage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query layer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, body)
	}

	var page featurePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &page, nil
}

func deref(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
