package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"s1-forestry/aoi"
	"s1-forestry/tableio"
)

const searchPath = "/services/search/param"

// SearchRequest scopes a catalog search.
type SearchRequest struct {
	AOI         aoi.Descriptor
	Start       time.Time
	End         time.Time
	ProductType string
}

// Searcher returns the scenes matching a request.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]Scene, error)
}

// ASFClient searches Sentinel-1 acquisitions through the ASF search API.
type ASFClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewASFClient creates a client for cfg.Endpoint.
func NewASFClient(cfg Config) *ASFClient {
	return &ASFClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type asfResponse struct {
	Type     string       `json:"type"`
	Features []asfFeature `json:"features"`
}

type asfFeature struct {
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties asfProperties     `json:"properties"`
}

type asfProperties struct {
	SceneName    string `json:"sceneName"`
	StartTime    string `json:"startTime"`
	URL          string `json:"url"`
}

// processingLevel maps generic product types to ASF processing levels.
func processingLevel(productType string) string {
	switch productType {
	case "", "GRD":
		return "GRD_HD"
	default:
		return productType
	}
}

// Search runs one query. Scenes are returned in the order ASF sends them.
func (c *ASFClient) Search(ctx context.Context, req SearchRequest) ([]Scene, error) {
	searchURL, err := c.buildSearchURL(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: build search URL: %w", err)
	}
	logrus.Debugf("ASF search %s", searchURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("catalog: ASF request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("catalog: ASF returned status %d: %s", resp.StatusCode, string(body))
	}

	var result asfResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("catalog: decode ASF response: %w", err)
	}

	scenes := make([]Scene, 0, len(result.Features))
	for _, f := range result.Features {
		s, err := sceneFromFeature(f)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, s)
	}
	logrus.Infof("ASF search returned %d scenes", len(scenes))
	return scenes, nil
}

func sceneFromFeature(f asfFeature) (Scene, error) {
	p := f.Properties
	date, err := tableio.ParseDate(p.StartTime)
	if err != nil {
		return Scene{}, fmt.Errorf("catalog: scene %s start time %q: %w", p.SceneName, p.StartTime, err)
	}
	s := Scene{
		ID:       p.SceneName,
		Filename: SceneFilename(date, p.SceneName),
		Date:     date,
		URL:      p.URL,
	}
	if f.Geometry != nil {
		if poly, ok := f.Geometry.Geometry().(orb.Polygon); ok && len(poly) > 0 {
			s.Footprint = poly[0]
		}
	}
	return s, nil
}

func (c *ASFClient) buildSearchURL(req SearchRequest) (string, error) {
	base, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	base.Path = searchPath

	wkt, err := req.AOI.WKT()
	if err != nil {
		return "", err
	}
	values := url.Values{}
	values.Set("dataset", "SENTINEL-1")
	values.Set("processingLevel", processingLevel(req.ProductType))
	values.Set("intersectsWith", wkt)
	if !req.Start.IsZero() {
		values.Set("start", req.Start.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if !req.End.IsZero() {
		values.Set("end", req.End.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if c.cfg.MaxResults > 0 {
		values.Set("maxResults", strconv.Itoa(c.cfg.MaxResults))
	}
	values.Set("output", "geojson")
	base.RawQuery = values.Encode()
	return base.String(), nil
}
