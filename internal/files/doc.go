// Package files finds consumption datasets on disk and writes reports
// next to them.
//
// Discovery lists the datasets in a directory (.xlsx, .xlsm and .csv),
// skipping hidden files and spreadsheet lock files, oldest first. The
// inbox watcher uses it for backfill.
//
// WriteFileAtomic writes through a temporary file and a rename so a
// report is either absent or complete.
//
// Example usage:
//
//	discovery := files.NewDiscovery(baseDir)
//	datasets, err := discovery.FindDatasets("data/inbox")
//	for _, ds := range datasets {
//	    // evaluate ds.Path
//	}
package files
