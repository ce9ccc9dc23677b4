package entsoe

import (
	"errors"
	"testing"
	"time"

	series "entsoe-feeder/internal/series/domain"
)

const generationDocument = `<?xml version="1.0" encoding="UTF-8"?>
<GL_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-6:generationloaddocument:3:0">
  <mRID>doc-1</mRID>
  <TimeSeries>
    <mRID>1</mRID>
    <inBiddingZone_Domain.mRID codingScheme="A01">10YAT-APG------L</inBiddingZone_Domain.mRID>
    <MktPSRType><psrType>B10</psrType></MktPSRType>
    <Period>
      <timeInterval>
        <start>2026-01-19T23:00Z</start>
        <end>2026-01-20T01:00Z</end>
      </timeInterval>
      <resolution>PT60M</resolution>
      <Point><position>1</position><quantity>120</quantity></Point>
      <Point><position>2</position><quantity> 80.5 </quantity></Point>
    </Period>
  </TimeSeries>
  <TimeSeries>
    <mRID>2</mRID>
    <outBiddingZone_Domain.mRID codingScheme="A01">10YAT-APG------L</outBiddingZone_Domain.mRID>
    <MktPSRType><psrType>B10</psrType></MktPSRType>
    <Period>
      <timeInterval>
        <start>2026-01-19T23:00Z</start>
        <end>2026-01-20T00:00Z</end>
      </timeInterval>
      <resolution>PT15M</resolution>
      <Point><position>1</position><quantity>40</quantity></Point>
    </Period>
  </TimeSeries>
</GL_MarketDocument>`

const acknowledgementDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Acknowledgement_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-1:acknowledgementdocument:7:0">
  <mRID>ack-1</mRID>
  <Reason>
    <code>999</code>
    <text>No matching data found for Data item ACTUAL_GENERATION_PER_PRODUCTION_TYPE</text>
  </Reason>
</Acknowledgement_MarketDocument>`

func TestParseDocument_Directional(t *testing.T) {
	blocks, err := ParseDocument([]byte(generationDocument), true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	first := blocks[0]
	if first.Direction != series.DirectionProduction {
		t.Fatalf("expected production direction, got %s", first.Direction)
	}
	if first.Resolution != "PT60M" {
		t.Fatalf("expected PT60M, got %q", first.Resolution)
	}
	if want := time.Date(2026, time.January, 19, 23, 0, 0, 0, time.UTC); !first.Start.Equal(want) {
		t.Fatalf("expected start %s, got %s", want, first.Start)
	}
	if len(first.Entries) != 2 || first.Entries[1].Position != 2 || first.Entries[1].Quantity != 80.5 {
		t.Fatalf("unexpected entries %+v", first.Entries)
	}
	if blocks[1].Direction != series.DirectionConsumption {
		t.Fatalf("expected consumption direction, got %s", blocks[1].Direction)
	}
}

func TestParseDocument_NonDirectional(t *testing.T) {
	blocks, err := ParseDocument([]byte(generationDocument), false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, block := range blocks {
		if block.Direction != series.DirectionUnspecified {
			t.Fatalf("expected unspecified direction, got %s", block.Direction)
		}
	}
}

func TestParseDocument_AcknowledgementHasNoBlocks(t *testing.T) {
	blocks, err := ParseDocument([]byte(acknowledgementDocument), true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(blocks))
	}
}

func TestParseDocument_Malformed(t *testing.T) {
	if _, err := ParseDocument([]byte("<GL_MarketDocument><TimeSeries>"), false); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
	bad := `<GL_MarketDocument><TimeSeries><Period><timeInterval><start>yesterday</start></timeInterval></Period></TimeSeries></GL_MarketDocument>`
	if _, err := ParseDocument([]byte(bad), false); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument for bad start, got %v", err)
	}
}

func TestParseReason(t *testing.T) {
	got := ParseReason([]byte(acknowledgementDocument))
	if got != "No matching data found for Data item ACTUAL_GENERATION_PER_PRODUCTION_TYPE" {
		t.Fatalf("unexpected reason %q", got)
	}
	if ParseReason([]byte("<html>bad gateway</html>")) != "" {
		t.Fatalf("expected empty reason for non-acknowledgement body")
	}
}

func TestDomain(t *testing.T) {
	domain, err := Domain("DE")
	if err != nil || domain != "10Y1001A1001A83F" {
		t.Fatalf("unexpected DE domain %q (%v)", domain, err)
	}
	if _, err := Domain("TR"); !errors.Is(err, ErrUnknownCountry) {
		t.Fatalf("expected ErrUnknownCountry, got %v", err)
	}
	countries := Countries()
	if len(countries) != 31 || countries[0] != "AL" || countries[len(countries)-1] != "SK" {
		t.Fatalf("unexpected countries %v", countries)
	}
}
