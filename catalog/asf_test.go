package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s1-forestry/aoi"
)

const asfBody = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Polygon", "coordinates": [[[-59, -34], [-56, -34], [-56, -31], [-59, -31], [-59, -34]]]},
     "properties": {"sceneName": "S1A_IW_GRDH_1SDV_20160103T091422", "startTime": "2016-01-03T09:14:22.000Z",
                    "url": "https://datapool.asf.alaska.edu/GRD_HD/SA/S1A_IW_GRDH_1SDV_20160103T091422.zip"}},
    {"type": "Feature", "geometry": null,
     "properties": {"sceneName": "S1B_IW_GRDH_1SDV_20170211T091300", "startTime": "2017-02-11T09:13:00.000000"}}
  ]
}`

func testDescriptor() aoi.Descriptor {
	return aoi.NewDescriptor(aoi.Rectangle(orb.Point{-58, -33}, orb.Point{-57.5, -32}), nil)
}

func TestASFClientSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/services/search/param", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "SENTINEL-1", q.Get("dataset"))
		assert.Equal(t, "GRD_HD", q.Get("processingLevel"))
		assert.Equal(t, "POLYGON((-58 -33, -58 -32, -57.5 -32, -57.5 -33, -58 -33))", q.Get("intersectsWith"))
		assert.Equal(t, "2008-01-01T00:00:00Z", q.Get("start"))
		assert.Equal(t, "2018-12-31T00:00:00Z", q.Get("end"))
		assert.Equal(t, "geojson", q.Get("output"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(asfBody))
	}))
	defer server.Close()

	client := NewASFClient(Config{APIKey: "token", Endpoint: server.URL, Timeout: 5 * time.Second, MaxResults: 10})
	scenes, err := client.Search(context.Background(), SearchRequest{
		AOI:         testDescriptor(),
		Start:       time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2018, 12, 31, 0, 0, 0, 0, time.UTC),
		ProductType: "GRD",
	})
	require.NoError(t, err)
	require.Len(t, scenes, 2)

	assert.Equal(t, "S1A_IW_GRDH_1SDV_20160103T091422", scenes[0].ID)
	assert.Equal(t, "2016-01-03_S1A_IW_GRDH_1SDV_20160103T091422", scenes[0].Filename)
	assert.Equal(t, "2016-01-03", scenes[0].Date.String())
	assert.Len(t, scenes[0].Footprint, 5)
	assert.Contains(t, scenes[0].URL, "datapool")

	assert.Equal(t, "2017-02-11", scenes[1].Date.String())
	assert.Empty(t, scenes[1].Footprint)
}

func TestASFClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewASFClient(Config{Endpoint: server.URL, Timeout: time.Second})
	_, err := client.Search(context.Background(), SearchRequest{AOI: testDescriptor()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestASFClientBadStartTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":null,"properties":{"sceneName":"x","startTime":"yesterday"}}]}`))
	}))
	defer server.Close()

	client := NewASFClient(Config{Endpoint: server.URL, Timeout: time.Second})
	_, err := client.Search(context.Background(), SearchRequest{AOI: testDescriptor()})
	assert.Error(t, err)
}

func TestASFClientEmptyAOI(t *testing.T) {
	client := NewASFClient(Config{Endpoint: "http://localhost", Timeout: time.Second})
	_, err := client.Search(context.Background(), SearchRequest{})
	assert.Error(t, err)
}
