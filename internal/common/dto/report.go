package dto

// CreateReportRequest represents a resolution report submission. A second
// submission for the same incident updates the existing report.
type CreateReportRequest struct {
	Incident   uint   `json:"incident" binding:"required"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Anomaly    string `json:"anomaly"`
	Analysis   string `json:"analysis"`
	Conclusion string `json:"conclusion"`
}

// UpdateReportRequest represents a partial report update
type UpdateReportRequest struct {
	Date       *string `json:"date,omitempty"`
	Time       *string `json:"time,omitempty"`
	Anomaly    *string `json:"anomaly,omitempty"`
	Analysis   *string `json:"analysis,omitempty"`
	Conclusion *string `json:"conclusion,omitempty"`
}
