// Package watch evaluates consumption datasets dropped into an inbox
// directory and writes one report workbook per dataset into an outbox.
//
// Events from fsnotify are debounced per file so a dataset that is still
// being copied is read only once it has been quiet for Config.Settle.
// Reports are named after the dataset, e.g. planta_norte.xlsx produces
// planta_norte_report.xlsx.
package watch
