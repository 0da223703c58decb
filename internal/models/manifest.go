package models

import "time"

// RunManifest summarises one update run.
type RunManifest struct {
	ID               string         `json:"id"`
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	HoldingsSource   string         `json:"holdings_source,omitempty"`
	RequestedTickers int            `json:"requested_tickers"`
	FetchedTickers   []string       `json:"fetched_tickers"`
	FailedTickers    []string       `json:"failed_tickers"`
	SkippedTickers   []string       `json:"skipped_tickers,omitempty"`
	StaleTickers     []string       `json:"stale_tickers,omitempty"`
	FetchRounds      int            `json:"fetch_rounds"`
	Excluded         map[string]int `json:"excluded,omitempty"`
	TablesWritten    []string       `json:"tables_written"`
	Error            string         `json:"error,omitempty"`
}

// FetchResult reports the outcome of a batched market data fetch.
type FetchResult struct {
	Closes  *Frame
	Volumes *Frame
	Fetched []string
	Failed  []string
	Skipped []string // symbols that cannot be fetched from the provider
	Stale   []string // fetched but without a close on the latest date
	Rounds  int
}

// FileStatus describes one mirrored JSON file.
type FileStatus struct {
	Name         string    `json:"name"`
	Exists       bool      `json:"exists"`
	LastModified time.Time `json:"last_modified,omitempty"`
	Size         int64     `json:"size,omitempty"`
}

// GapReport lists a ticker's missing cells after its listing date.
type GapReport struct {
	Ticker       string
	MissingDates []time.Time
	LongestRun   int
	RunStart     time.Time
	RunEnd       time.Time
}

// MappingProblem is an inconsistency between ticker type and industry.
type MappingProblem struct {
	Ticker string
	Type   string
	Issue  string
}

// FetchSummary reports a full fetch run.
type FetchSummary struct {
	HoldingsFile string   `json:"holdings_file"`
	Requested    int      `json:"requested"`
	Fetched      []string `json:"fetched"`
	Failed       []string `json:"failed"`
	Skipped      []string `json:"skipped,omitempty"`
	Rounds       int      `json:"rounds"`
	StaleLatest  []string `json:"stale_latest,omitempty"` // no close on the latest date
	InfoRows     int      `json:"info_rows"`
	InfoErrors   int      `json:"info_errors"`
}

// ProcessSummary reports a processing run.
type ProcessSummary struct {
	AsOf          time.Time      `json:"as_of"`
	Tickers       int            `json:"tickers"`
	Holdings      int            `json:"holdings"`
	TablesWritten []string       `json:"tables_written"`
	Excluded      map[string]int `json:"excluded"`
	// GroupDTD is the day's contribution per group, keyed by "sector" or
	// "country" then group name.
	GroupDTD map[string]map[string]float64 `json:"group_dtd"`
}

// ValidationReport collects data-quality findings.
type ValidationReport struct {
	Gaps    []GapReport      `json:"gaps"`
	Mapping []MappingProblem `json:"mapping"`
}
