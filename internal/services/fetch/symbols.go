package fetch

import "strings"

// exchangeSuffixes maps Yahoo-style exchange suffixes to EODHD exchange codes.
var exchangeSuffixes = map[string]string{
	"KS": "KO",
	"KQ": "KQ",
	"L":  "LSE",
	"AX": "AU",
	"DE": "XETRA",
	"F":  "F",
	"T":  "TSE",
	"HK": "HK",
	"TW": "TW",
	"SS": "SHG",
	"SZ": "SHE",
	"PA": "PA",
	"AS": "AS",
	"SW": "SW",
	"TO": "TO",
	"MI": "MI",
	"MC": "MC",
	"ST": "ST",
	"CO": "CO",
	"OL": "OL",
	"HE": "HE",
	"NS": "NSE",
}

// indexSymbols maps index tickers to their EODHD codes.
var indexSymbols = map[string]string{
	"^SPX":  "GSPC.INDX",
	"^GSPC": "GSPC.INDX",
	"^DJI":  "DJI.INDX",
	"^IXIC": "IXIC.INDX",
	"^NDX":  "NDX.INDX",
}

// IsPrivate reports whether a ticker names a private holding with no market price.
func IsPrivate(ticker string) bool {
	return strings.HasSuffix(strings.ToUpper(ticker), ".PVT")
}

// ToEODHDSymbol converts a holdings/benchmark ticker to the EODHD symbol used
// for requests. Explicit overrides win. ok is false for private holdings.
func ToEODHDSymbol(ticker string, overrides map[string]string) (symbol string, ok bool) {
	ticker = strings.TrimSpace(ticker)
	if s, found := overrides[ticker]; found {
		return s, s != ""
	}
	if ticker == "" || IsPrivate(ticker) {
		return "", false
	}
	if s, found := indexSymbols[strings.ToUpper(ticker)]; found {
		return s, true
	}
	if strings.HasPrefix(ticker, "^") {
		return strings.TrimPrefix(ticker, "^") + ".INDX", true
	}

	dot := strings.LastIndex(ticker, ".")
	if dot <= 0 {
		return ticker + ".US", true
	}
	base, suffix := ticker[:dot], strings.ToUpper(ticker[dot+1:])
	if code, found := exchangeSuffixes[suffix]; found {
		return base + "." + code, true
	}
	// class shares such as BRK.B trade in the US
	if len(suffix) == 1 {
		return base + "-" + suffix + ".US", true
	}
	return ticker, true
}
