package domain

// Report sheet names and content type
const (
	SheetEmissionsData     = "Emissions Data"
	SheetRegulatorySummary = "Regulatory Summary"

	ReportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Summary row concepts
const (
	ConceptTotalEmissions   = "Total Emissions tCO2e"
	ConceptRegulatoryStatus = "Regulatory Status"
	ConceptEmissionFactor   = "Emission Factor"
)

// ReportDocument is a serialized report ready to be handed to a caller
type ReportDocument struct {
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Size returns the document size in bytes
func (d ReportDocument) Size() int {
	return len(d.Data)
}

// Evaluation is the full result of evaluating one dataset
type Evaluation struct {
	Records   []EnrichedRecord  `json:"records"`
	Total     float64           `json:"total_tco2e"`
	Factor    EmissionFactor    `json:"factor"`
	Result    ComplianceResult  `json:"classification"`
	Breakdown []PlantMonthTotal `json:"breakdown,omitempty"`
}

// ReportFormat defines the format of a report
type ReportFormat string

const (
	ReportFormatExcel ReportFormat = "xlsx"
	ReportFormatCSV   ReportFormat = "csv"
	ReportFormatJSON  ReportFormat = "json"
)
