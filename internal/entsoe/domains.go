package entsoe

import (
	"fmt"
	"sort"
)

// domains maps country codes to ENTSO-E EIC bidding zone / control area codes.
var domains = map[string]string{
	"AL": "10YAL-KESH-----5",
	"AT": "10YAT-APG------L",
	"BE": "10YBE----------2",
	"BG": "10YCA-BULGARIA-R",
	"CH": "10YCH-SWISSGRIDZ",
	"CZ": "10YCZ-CEPS-----N",
	"DE": "10Y1001A1001A83F",
	"DK": "10Y1001A1001A65H",
	"EE": "10Y1001A1001A39I",
	"ES": "10YES-REE------0",
	"FI": "10YFI-1--------U",
	"FR": "10YFR-RTE------C",
	"GB": "10YGB----------A",
	"GR": "10YGR-HTSO-----Y",
	"HR": "10YHR-HEP------M",
	"HU": "10YHU-MAVIR----U",
	"IE": "10YIE-1001A00010",
	"IT": "10YIT-GRTN-----B",
	"LT": "10YLT-1001A0008Q",
	"LV": "10YLV-1001A00074",
	"MK": "10YMK-MEPSO----8",
	"MT": "10Y1001A1001A93C",
	"NL": "10YNL----------L",
	"NO": "10YNO-0--------C",
	"PL": "10YPL-AREA-----S",
	"PT": "10YPT-REN------W",
	"RO": "10YRO-TEL------P",
	"RS": "10YCS-SERBIATSOV",
	"SE": "10YSE-1--------K",
	"SI": "10YSI-ELES-----O",
	"SK": "10YSK-SEPS-----K",
}

// Domain returns the EIC code for a country.
func Domain(countryCode string) (string, error) {
	domain, ok := domains[countryCode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, countryCode)
	}
	return domain, nil
}

// Countries returns every supported country code, sorted.
func Countries() []string {
	out := make([]string, 0, len(domains))
	for code := range domains {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
