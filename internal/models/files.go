package models

// Source area files
const (
	FileCloses          = "market_data_closes.csv"
	FileVolumes         = "market_data_volumes.csv"
	FileHoldingsTickers = "holdings_tickers.csv"
	FileHoldingsInfo    = "holdings_info.csv"
)

// Processed area files
const (
	FileReturns         = "returns.csv"
	FileRiskMetrics     = "risk_metrics.csv"
	FileVolumeAnalysis  = "volume_analysis.csv"
	FileSectorAnalysis  = "holdings_sectorAnalysis.csv"
	FileCountryAnalysis = "holdings_countryAnalysis.csv"
)

// FileManifest is the run manifest written to the JSON area.
const FileManifest = "run_manifest.json"
