// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

// AnalysisRequest is the body of POST /api/v1/analysis.
type AnalysisRequest struct {
	PublicationURL string `json:"publication_url" validate:"required,publication"`
	Limit          int    `json:"limit" validate:"omitempty,min=1,max=500"`
	Export         *bool  `json:"export"`
}

// WantsExport reports whether a spreadsheet should be written. Defaults to true.
func (r *AnalysisRequest) WantsExport() bool {
	return r.Export == nil || *r.Export
}

// AnalyticsQuery holds the query parameters of GET /api/v1/analytics/:publication.
type AnalyticsQuery struct {
	Limit   int  `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
	Refresh bool `query:"refresh" json:"refresh"`
	Posts   bool `query:"posts" json:"posts"`
}

// HistoryQuery holds the query parameters of the history endpoint.
type HistoryQuery struct {
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}
