package entsoe

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	series "entsoe-feeder/internal/series/domain"
)

type marketDocument struct {
	TimeSeries []timeSeries `xml:"TimeSeries"`
}

type timeSeries struct {
	InDomain  *domainRef `xml:"inBiddingZone_Domain.mRID"`
	OutDomain *domainRef `xml:"outBiddingZone_Domain.mRID"`
	Periods   []period   `xml:"Period"`
}

type domainRef struct {
	Value string `xml:",chardata"`
}

type period struct {
	Interval   timeInterval `xml:"timeInterval"`
	Resolution string       `xml:"resolution"`
	Points     []point      `xml:"Point"`
}

type timeInterval struct {
	Start string `xml:"start"`
	End   string `xml:"end"`
}

type point struct {
	Position int     `xml:"position"`
	Quantity float64 `xml:"quantity"`
}

type acknowledgement struct {
	XMLName xml.Name `xml:"Acknowledgement_MarketDocument"`
	Reasons []reason `xml:"Reason"`
}

type reason struct {
	Code string `xml:"code"`
	Text string `xml:"text"`
}

// ParseDocument extracts one block per TimeSeries period. When directional is set,
// a TimeSeries carrying an in-domain is production and one without it is storage consumption.
func ParseDocument(body []byte, directional bool) ([]series.Block, error) {
	var doc marketDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	var blocks []series.Block
	for _, ts := range doc.TimeSeries {
		direction := series.DirectionUnspecified
		if directional {
			direction = series.DirectionConsumption
			if ts.InDomain != nil {
				direction = series.DirectionProduction
			}
		}
		for _, p := range ts.Periods {
			start, err := parseInstant(p.Interval.Start)
			if err != nil {
				return nil, err
			}
			block := series.Block{
				Resolution: strings.TrimSpace(p.Resolution),
				Start:      start,
				Direction:  direction,
				Entries:    make([]series.Entry, 0, len(p.Points)),
			}
			for _, pt := range p.Points {
				block.Entries = append(block.Entries, series.Entry{Position: pt.Position, Quantity: pt.Quantity})
			}
			blocks = append(blocks, block)
		}
	}
	return blocks, nil
}

// ParseReason extracts the reason text of an acknowledgement document.
func ParseReason(body []byte) string {
	if !bytes.Contains(body, []byte("Acknowledgement_MarketDocument")) {
		return ""
	}
	var ack acknowledgement
	if err := xml.Unmarshal(body, &ack); err != nil {
		return ""
	}
	texts := make([]string, 0, len(ack.Reasons))
	for _, r := range ack.Reasons {
		if text := strings.TrimSpace(r.Text); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "; ")
}

var instantLayouts = []string{"2006-01-02T15:04Z07:00", time.RFC3339}

func parseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid start %q", ErrMalformedDocument, value)
}
