// Package registry loads structured snapshot fixtures produced by the
// ingestion layer. The engine never parses raw credit-report documents;
// it consumes already-structured field snapshots from files like these.
package registry

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tradeline-audit/internal/model"
	"github.com/sells-group/tradeline-audit/internal/report"
)

// LoadSnapshotFromFile reads a single model.Snapshot from a JSON file.
func LoadSnapshotFromFile(path string) (model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Snapshot{}, eris.Wrap(err, "registry: read snapshot fixture")
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, eris.Wrap(err, "registry: unmarshal snapshot fixture")
	}
	return snap, nil
}

// LoadSeriesFromFile reads a JSON array of model.SeriesSnapshot, oldest
// first by convention, though consumers re-sort defensively.
func LoadSeriesFromFile(path string) ([]model.SeriesSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read series fixture")
	}

	var snaps []model.SeriesSnapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal series fixture")
	}
	return snaps, nil
}

// LoadAccountsFromFile reads a JSON array of account series for batch
// auditing.
func LoadAccountsFromFile(path string) ([]report.AccountSeries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read accounts fixture")
	}

	var accounts []report.AccountSeries
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal accounts fixture")
	}
	return accounts, nil
}
