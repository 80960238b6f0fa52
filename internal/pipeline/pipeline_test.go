package pipeline

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brugmelding/brugwacht/internal/diagnostics"
	"github.com/brugmelding/brugwacht/internal/history"
	"github.com/brugmelding/brugwacht/internal/metrics"
	"github.com/brugmelding/brugwacht/internal/types"
	"github.com/brugmelding/brugwacht/pkg/config"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP:Envelope xmlns:SOAP="http://schemas.xmlsoap.org/soap/envelope/">
  <SOAP:Body>
    <d2LogicalModel>
      <payloadPublication>
        <situation id="NDW01_b949d_NLVLB002100463">
          <situationRecord id="NDW01_b949d_NLVLB002100463_1" version="2">
            <probabilityOfOccurrence>certain</probabilityOfOccurrence>
            <validity>
              <validityStatus>active</validityStatus>
              <validityTimeSpecification>
                <overallStartTime>%s</overallStartTime>
                <overallEndTime>%s</overallEndTime>
              </validityTimeSpecification>
            </validity>
            <groupOfLocations>
              <locationForDisplay>
                <latitude>52.0448</latitude>
                <longitude>4.3592</longitude>
              </locationForDisplay>
            </groupOfLocations>
            <operatorActionStatus>beingImplemented</operatorActionStatus>
          </situationRecord>
        </situation>
      </payloadPublication>
    </d2LogicalModel>
  </SOAP:Body>
</SOAP:Envelope>
`

const bridgesContent = `[
	{"id": "NLVLB002100463", "latitude": 52.0448, "longitude": 4.3592, "naam": "Hoornbrug", "ndwID": "b949d"},
	{"id": "NLALK001600951", "latitude": 52.6324, "longitude": 4.7534, "naam": "Leeghwaterbrug", "ndwID": "c1234"}
]`

func serveFeed(t *testing.T, document string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz := gzip.NewWriter(w)
		if _, err := gz.Write([]byte(document)); err != nil {
			t.Error(err)
		}
		gz.Close()
	}))
}

func testConfig(t *testing.T, feedURL, matchingMode string) *config.ConfigData {
	t.Helper()
	dir := t.TempDir()

	bridgesFile := filepath.Join(dir, "bruggen.json")
	if err := os.WriteFile(bridgesFile, []byte(bridgesContent), 0o644); err != nil {
		t.Fatal(err)
	}

	return &config.ConfigData{
		App: config.AppData{
			BridgesFile:   bridgesFile,
			SnapshotFile:  filepath.Join(dir, "bruggen_status.json"),
			RunLogFile:    filepath.Join(dir, "foute_bruggen.log"),
			MissingIDFile: filepath.Join(dir, "ontbrekende_ndw_ids.json"),
		},
		Feed: config.FeedData{
			URL:          feedURL,
			Timeout:      5,
			MatchingMode: matchingMode,
		},
	}
}

func readSnapshot(t *testing.T, path string) map[string]types.SnapshotRecord {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var records []types.SnapshotRecord
	if err := json.Unmarshal(content, &records); err != nil {
		t.Fatal(err)
	}
	byID := make(map[string]types.SnapshotRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	return byID
}

func TestRunProducesSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	document := fmt.Sprintf(feedTemplate,
		now.Add(-5*time.Minute).Format(time.RFC3339),
		now.Add(10*time.Minute).Format(time.RFC3339))

	server := serveFeed(t, document)
	defer server.Close()

	cfg := testConfig(t, server.URL, "coordinate")
	p := New(cfg, history.NewLogger(nil), metrics.New())
	p.nowFn = func() time.Time { return now }

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	records := readSnapshot(t, cfg.App.SnapshotFile)
	if len(records) != 2 {
		t.Fatalf("expected a record per bridge, got %d", len(records))
	}

	matched := records["NLVLB002100463"]
	if matched.Status != types.StatusOpen || !matched.Open {
		t.Errorf("expected matched bridge to be open, got %+v", matched)
	}
	if matched.Name != "Hoornbrug" || matched.Version != "2" {
		t.Errorf("feed fields not carried into snapshot: %+v", matched)
	}

	// The bridge without a candidate falls back to the closed default.
	unmatched := records["NLALK001600951"]
	if unmatched.Status != types.StatusClosed || unmatched.Open {
		t.Errorf("expected unmatched bridge to default to closed, got %+v", unmatched)
	}
	if unmatched.OperatorActionStatus != "certain" || unmatched.SituationPredicted != "beingTerminated" {
		t.Errorf("closed default fields missing: %+v", unmatched)
	}
	if unmatched.Version != "0" || unmatched.StartRaw != "" {
		t.Errorf("closed default must carry no feed window: %+v", unmatched)
	}
}

func TestRunLogsMissingCorrelationIDs(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	document := fmt.Sprintf(feedTemplate,
		now.Add(-5*time.Minute).Format(time.RFC3339),
		now.Add(10*time.Minute).Format(time.RFC3339))

	server := serveFeed(t, document)
	defer server.Close()

	cfg := testConfig(t, server.URL, "ndwid")
	cfg.Feed.MissingIDPolicy = "log"
	p := New(cfg, history.NewLogger(nil), metrics.New())
	p.nowFn = func() time.Time { return now }

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// b949d resolved through the feed; c1234 did not and must be remembered.
	content, err := os.ReadFile(cfg.App.MissingIDFile)
	if err != nil {
		t.Fatalf("expected the missing-identifier file to be written: %v", err)
	}
	var entries []diagnostics.MissingIDEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].NDWID != "c1234" {
		t.Errorf("expected only c1234 in the missing-identifier log, got %+v", entries)
	}
	if entries[0].Name != "Leeghwaterbrug" || entries[0].FirstSeen == "" {
		t.Errorf("missing-identifier entry incomplete: %+v", entries[0])
	}
}

func TestRunFailsOnFeedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storing", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL, "coordinate")
	p := New(cfg, history.NewLogger(nil), metrics.New())

	if err := p.Run(context.Background()); err == nil {
		t.Error("expected a feed failure to fail the run")
	}
	if _, err := os.Stat(cfg.App.SnapshotFile); !os.IsNotExist(err) {
		t.Error("a failed run must not write a snapshot")
	}
}

func TestRunFailsOnMissingBridgesFile(t *testing.T) {
	server := serveFeed(t, fmt.Sprintf(feedTemplate,
		time.Now().Format(time.RFC3339), time.Now().Format(time.RFC3339)))
	defer server.Close()

	cfg := testConfig(t, server.URL, "coordinate")
	cfg.App.BridgesFile = filepath.Join(t.TempDir(), "bestaat_niet.json")
	p := New(cfg, history.NewLogger(nil), metrics.New())

	if err := p.Run(context.Background()); err == nil {
		t.Error("expected a missing registry to fail the run")
	}
}
