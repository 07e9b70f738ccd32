package dto

type StatsResponse struct {
	TotalUsers          int64            `json:"total_users"`
	TotalDocuments      int64            `json:"total_documents"`
	TotalSubmissions    int64            `json:"total_submissions"`
	SubmissionsByStatus map[string]int64 `json:"submissions_by_status"`
}

// DBInfoResponse is the payload of the connectivity probe.
type DBInfoResponse struct {
	CurrentTime       string `json:"current_time"`
	PostgreSQLVersion string `json:"postgresql_version"`
}
