package scanner

import (
	"database/sql"
	"fmt"

	"imagedetective/database"
	"imagedetective/logging"
)

// StoreRun appends the verdicts of a run to the history database. Failed
// candidates are skipped.
func StoreRun(db *sql.DB, run Run) error {
	stored := 0
	for _, r := range run.Results {
		if r.Error != nil {
			continue
		}
		if err := database.StoreVerdict(db, run.ID, run.Profile, *r.Verdict, r.Report); err != nil {
			return logging.NewOperationError("store run", run.ID, fmt.Errorf("after %d verdicts: %w", stored, err))
		}
		stored++
	}
	logging.DebugLog("Stored %d verdicts for run %s", stored, run.ID)
	return nil
}
