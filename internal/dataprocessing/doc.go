// Package dataprocessing loads consumption datasets from xlsx workbooks
// and CSV streams.
//
// Headers are matched case-insensitively after trimming:
//
//	month            month, mes
//	plant            plant, planta, facility
//	consumption_kwh  consumption_kwh, consumo_kwh, consumption kwh, kwh
//
// A missing column yields ErrMissingColumn and a consumption cell that is
// not a finite number yields ErrNonNumeric, each wrapped in a typed error
// carrying the column and row. Both are data-access errors the caller
// propagates unchanged.
package dataprocessing
