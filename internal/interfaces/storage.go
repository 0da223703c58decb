package interfaces

import (
	"time"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// Area names one of the data directories
type Area string

const (
	AreaSource    Area = "source"    // raw market data and holdings info
	AreaProcessed Area = "processed" // computed tables
	AreaHoldings  Area = "holdings"  // dated fund holdings files
	AreaJSON      Area = "json"      // JSON mirror
)

// DataStore reads and writes the pipeline's files. Missing files are
// reported with storage.ErrNotFound.
type DataStore interface {
	// Path returns the absolute path of a file in an area
	Path(area Area, name string) string

	ReadFrame(area Area, name string) (*models.Frame, error)
	WriteFrame(area Area, name string, frame *models.Frame) error

	ReadTable(area Area, name string) (*models.Table, error)
	WriteTable(area Area, name string, table *models.Table) error

	// ReadJSONTable and WriteJSONTable operate on the JSON mirror
	ReadJSONTable(name string) (*models.Table, time.Time, error)
	WriteJSONTable(name string, table *models.Table, updated time.Time) error

	ReadFile(area Area, name string) ([]byte, error)
	WriteFile(area Area, name string, data []byte) error
	ReadJSON(area Area, name string, v interface{}) error
	WriteJSON(area Area, name string, v interface{}) error

	// Stat describes a file, Exists is false when it is missing
	Stat(area Area, name string) models.FileStatus

	// HoldingsFiles lists holdings files with the suffix, newest date first
	HoldingsFiles(suffix string) ([]string, error)
}
