package interop

import (
	"github.com/peerlink/interop/pkg/handle"
	"github.com/peerlink/interop/pkg/stats"
)

// PeerConnectionGetSimpleStats collects a report asynchronously and hands
// its handle to cb exactly once. The handle carries one reference; the
// callback's owner must release it with StatsReportRelease. On collection
// failure cb receives the nil handle.
func PeerConnectionGetSimpleStats(h Handle, cb func(report Handle)) Result {
	return guard(func() error {
		if cb == nil {
			return ErrInvalidArgument
		}
		conn, handles, err := getConnection(h)
		if err != nil {
			return err
		}
		conn.GetStatsAsync(func(report *stats.Report, err error) {
			if err != nil {
				cb(NilHandle)
				return
			}
			cb(handles.Acquire(handle.KindStatsReport, report))
		})
		return nil
	})
}

// StatsReportGetObjects flattens the report into snapshots of the
// requested category, delivering each to cb in first-seen order. An
// unrecognized category succeeds with zero deliveries.
func StatsReportGetObjects(report Handle, category string, cb func(snapshot interface{})) Result {
	return guard(func() error {
		if cb == nil {
			return ErrInvalidArgument
		}
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		obj, err := handles.Get(report, handle.KindStatsReport)
		if err != nil {
			return err
		}
		return stats.GetObjects(obj.(*stats.Report), category, cb)
	})
}

// StatsReportRelease drops the caller's reference to the report.
func StatsReportRelease(report Handle) Result {
	return guard(func() error {
		_, handles, err := getLibrary()
		if err != nil {
			return err
		}
		if _, err = handles.Get(report, handle.KindStatsReport); err != nil {
			return err
		}
		_, _, err = handles.Release(report)
		return err
	})
}
