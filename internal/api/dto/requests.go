package dto

// ReportWindowRequest is the optional JSON body of a report request.
// Both fields must be set for the explicit range to apply.
type ReportWindowRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// HasRange reports whether both ends of the range were supplied.
func (r ReportWindowRequest) HasRange() bool {
	return r.StartTime != "" && r.EndTime != ""
}
