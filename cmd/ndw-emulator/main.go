// ndw-emulator serves a small gzipped DATEX II bridge-opening document
// for local development, so brugwacht can be pointed at
// http://localhost:8090/brugopeningen.xml.gz instead of the live NDW
// endpoint. Timestamps in the sample are rewritten relative to "now" on
// every request so the situations stay inside the retention window.
package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP:Envelope xmlns:SOAP="http://schemas.xmlsoap.org/soap/envelope/">
  <SOAP:Body>
    <d2LogicalModel xmlns="http://datex2.eu/schema/2/2_0" modelBaseVersion="2">
      <payloadPublication lang="nl">
        <situation id="NDW01_EMU001_open">
          <situationRecord id="NDW01_EMU001_open_1" version="2">
            <probabilityOfOccurrence>certain</probabilityOfOccurrence>
            <validity>
              <validityStatus>active</validityStatus>
              <validityTimeSpecification>
                <overallStartTime>{{START_ACTIVE}}</overallStartTime>
                <overallEndTime>{{END_ACTIVE}}</overallEndTime>
              </validityTimeSpecification>
            </validity>
            <groupOfLocations>
              <locationForDisplay>
                <latitude>52.08997</latitude>
                <longitude>4.30011</longitude>
              </locationForDisplay>
            </groupOfLocations>
            <operatorActionStatus>beingImplemented</operatorActionStatus>
          </situationRecord>
        </situation>
        <situation id="NDW01_EMU002_planned">
          <situationRecord id="NDW01_EMU002_planned_1" version="1">
            <probabilityOfOccurrence>probable</probabilityOfOccurrence>
            <validity>
              <validityStatus>planned</validityStatus>
              <validityTimeSpecification>
                <overallStartTime>{{START_PLANNED}}</overallStartTime>
              </validityTimeSpecification>
            </validity>
            <groupOfLocations>
              <locationForDisplay>
                <latitude>51.91750</latitude>
                <longitude>4.48063</longitude>
              </locationForDisplay>
            </groupOfLocations>
            <operatorActionStatus>approved</operatorActionStatus>
          </situationRecord>
        </situation>
      </payloadPublication>
    </d2LogicalModel>
  </SOAP:Body>
</SOAP:Envelope>
`

func renderDocument(now time.Time) string {
	doc := sampleDocument
	doc = strings.ReplaceAll(doc, "{{START_ACTIVE}}", now.Add(-5*time.Minute).UTC().Format(time.RFC3339))
	doc = strings.ReplaceAll(doc, "{{END_ACTIVE}}", now.Add(10*time.Minute).UTC().Format(time.RFC3339))
	doc = strings.ReplaceAll(doc, "{{START_PLANNED}}", now.Add(45*time.Minute).UTC().Format(time.RFC3339))
	return doc
}

func main() {
	listenAddr := flag.String("listen", ":8090", "Listen address")
	flag.Parse()

	http.HandleFunc("/brugopeningen.xml.gz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")

		gz := gzip.NewWriter(w)
		defer gz.Close()

		if _, err := gz.Write([]byte(renderDocument(time.Now()))); err != nil {
			log.Printf("error writing response: %v", err)
		}
	})

	fmt.Printf("NDW emulator listening on %s (feed at /brugopeningen.xml.gz)\n", *listenAddr)
	if err := http.ListenAndServe(*listenAddr, nil); err != nil {
		log.Fatal(err)
	}
}
