package feed

import (
	"encoding/xml"
	"strings"

	"github.com/brugmelding/brugwacht/internal/timeutil"
	"github.com/brugmelding/brugwacht/internal/types"
)

// The bridge-opening feed is a DATEX II publication inside a SOAP
// envelope. Only the handful of elements the matching engine needs are
// mapped; everything else is ignored by the decoder. All mapped fields
// are optional in the wire format, so absence decodes to the empty string
// rather than failing the document.

type envelope struct {
	XMLName xml.Name
	Body    struct {
		D2LogicalModel struct {
			PayloadPublication struct {
				Situations []situationXML `xml:"situation"`
			} `xml:"payloadPublication"`
		} `xml:"d2LogicalModel"`
	} `xml:"Body"`
}

type situationXML struct {
	ID     string             `xml:"id,attr"`
	Record situationRecordXML `xml:"situationRecord"`
}

type situationRecordXML struct {
	ID                      string        `xml:"id,attr"`
	Version                 string        `xml:"version,attr"`
	ProbabilityOfOccurrence string        `xml:"probabilityOfOccurrence"`
	OperatorActionStatus    string        `xml:"operatorActionStatus"`
	Validity                validityXML   `xml:"validity"`
	Locations               groupOfLocXML `xml:"groupOfLocations"`
}

type validityXML struct {
	Status            string `xml:"validityStatus"`
	TimeSpecification struct {
		OverallStartTime string `xml:"overallStartTime"`
		OverallEndTime   string `xml:"overallEndTime"`
	} `xml:"validityTimeSpecification"`
}

type groupOfLocXML struct {
	Display struct {
		Latitude  string `xml:"latitude"`
		Longitude string `xml:"longitude"`
	} `xml:"locationForDisplay"`
}

// parseDocument decodes a DATEX II document into situations. A document
// without situation nodes is not an error: the feed is legitimately empty
// when no bridge is open or planned.
func parseDocument(content []byte) ([]types.Situation, error) {
	var doc envelope
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	raw := doc.Body.D2LogicalModel.PayloadPublication.Situations
	situations := make([]types.Situation, 0, len(raw))
	for _, s := range raw {
		situations = append(situations, convertSituation(s))
	}
	return situations, nil
}

func convertSituation(s situationXML) types.Situation {
	record := s.Record
	spec := record.Validity.TimeSpecification

	situation := types.Situation{
		ID:             s.ID,
		CorrelationID:  extractNDWIdentifier(s.ID),
		Latitude:       record.Locations.Display.Latitude,
		Longitude:      record.Locations.Display.Longitude,
		StartRaw:       spec.OverallStartTime,
		EndRaw:         spec.OverallEndTime,
		ValidityStatus: record.Validity.Status,
		Probability:    record.ProbabilityOfOccurrence,
		OperatorAction: record.OperatorActionStatus,
		Version:        record.Version,
	}
	if situation.Version == "" {
		situation.Version = "0"
	}

	if start, ok := timeutil.Parse(spec.OverallStartTime); ok {
		situation.Start = start
	}
	if end, ok := timeutil.Parse(spec.OverallEndTime); ok {
		situation.End = &end
	}
	return situation
}

// extractNDWIdentifier derives the NDW correlation identifier from the
// situation id attribute. Ids look like "NDW01_b949d_NLALK001600951",
// where the second segment carries the identifier; ids without segments
// are used as-is.
func extractNDWIdentifier(situationID string) string {
	if situationID == "" {
		return ""
	}

	parts := strings.Split(situationID, "_")
	if len(parts) > 1 {
		return parts[1]
	}
	return situationID
}
