package scan

import (
	"fmt"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/ledger"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// Report summarizes a ledger integrity scan.
type Report struct {
	Records         uint64
	Alerts          uint64
	FeedLength      uint64
	MissingRecords  []ids.RecordID
	MissingOutcomes []ids.RecordID
	MissingAlerts   []ids.AlertID
	OpenAnomaly     int
	OpenAlert       int
	Completed       int
}

// Clean reports whether the scan found no gaps.
func (r Report) Clean() bool {
	return len(r.MissingRecords) == 0 && len(r.MissingOutcomes) == 0 && len(r.MissingAlerts) == 0
}

// ScanLedger walks the ledger and checks that every assigned id up to
// the counters is actually present: ids are dense, each record carries
// an outcome slot from the moment it is appended, and every correlation
// resolves. Run at node startup before the API comes up.
func ScanLedger(state *ledger.State) (Report, error) {
	var report Report

	records, err := state.RecordCount()
	if err != nil {
		return report, err
	}
	report.Records = records

	for i := uint64(1); i <= records; i++ {
		id := ids.RecordID(i)
		_, found, err := state.GetRecord(id)
		if err != nil {
			return report, err
		}
		if !found {
			report.MissingRecords = append(report.MissingRecords, id)
			continue
		}
		_, found, err = state.GetOutcome(id)
		if err != nil {
			return report, err
		}
		if !found {
			report.MissingOutcomes = append(report.MissingOutcomes, id)
		}
	}

	alerts, err := state.AlertCount()
	if err != nil {
		return report, err
	}
	report.Alerts = alerts

	for i := uint64(1); i <= alerts; i++ {
		id := ids.AlertID(i)
		_, found, err := state.GetAlert(id)
		if err != nil {
			return report, err
		}
		if !found {
			report.MissingAlerts = append(report.MissingAlerts, id)
		}
	}

	feed, err := state.FeedLength()
	if err != nil {
		return report, err
	}
	report.FeedLength = feed

	reqs, err := state.ListRequests()
	if err != nil {
		return report, err
	}
	for _, req := range reqs {
		switch {
		case req.Completed:
			report.Completed++
		case req.Kind == ledger.RequestAnomaly:
			report.OpenAnomaly++
		default:
			report.OpenAlert++
		}
	}

	return report, nil
}

// PrintReport writes a human readable scan summary to stdout.
func PrintReport(report Report) {
	fmt.Printf("🔎 Ledger scan: %d records, %d alerts, %d feed entries\n", report.Records, report.Alerts, report.FeedLength)
	fmt.Printf("  ▸ Correlations: %d completed, %d open anomaly, %d open alert\n", report.Completed, report.OpenAnomaly, report.OpenAlert)
	for _, id := range report.MissingRecords {
		fmt.Printf("❌ Record %d counted but missing from ledger\n", id)
	}
	for _, id := range report.MissingOutcomes {
		fmt.Printf("❌ Record %d has no outcome slot\n", id)
	}
	for _, id := range report.MissingAlerts {
		fmt.Printf("❌ Alert %d counted but missing from ledger\n", id)
	}
	if report.Clean() {
		fmt.Println("✅ Ledger scan clean")
	} else {
		fmt.Println("⚠️  Ledger scan found gaps; check the store before serving traffic")
	}
}
