package domain

import "time"

const (
	DefaultMaxItems = 500
	MaxLedgerList   = 50
)

type SourceType string

const (
	SourceChannel SourceType = "channel"
	SourceHashtag SourceType = "hashtag"
	SourceUser    SourceType = "user"
	SourceSearch  SourceType = "search"
)

func (t SourceType) Valid() bool {
	switch t {
	case SourceChannel, SourceHashtag, SourceUser, SourceSearch:
		return true
	}
	return false
}

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

type JobMode string

const (
	ModeFetch  JobMode = "fetch"
	ModeSearch JobMode = "search"
)

type JobSpec struct {
	Platform    Platform   `json:"platform" yaml:"platform"`
	SourceID    string     `json:"sourceId,omitempty" yaml:"source_id"`
	SearchQuery string     `json:"searchQuery,omitempty" yaml:"search_query"`
	SourceType  SourceType `json:"sourceType,omitempty" yaml:"source_type"`
	MaxItems    int        `json:"maxItems,omitempty" yaml:"max_items"`
}

// Mode reports which connector call the spec maps to. A search query wins over a source id.
func (s JobSpec) Mode() JobMode {
	if s.SearchQuery != "" {
		return ModeSearch
	}
	return ModeFetch
}

// JobResult describes one run. NewItems counts every successful upsert, updates included.
type JobResult struct {
	RunID         string
	Platform      Platform
	SourceID      string
	SearchQuery   string
	ItemsFetched  int
	NewItems      int
	ErrorMessages []string
	Duration      time.Duration
	Status        JobStatus
}

// JobResponse is the wire shape returned to job submitters.
type JobResponse struct {
	Success       bool      `json:"success"`
	RunID         string    `json:"runId"`
	Platform      Platform  `json:"platform"`
	SourceID      string    `json:"sourceId,omitempty"`
	SearchQuery   string    `json:"searchQuery,omitempty"`
	ItemsFetched  int       `json:"itemsFetched"`
	NewItems      int       `json:"newItems"`
	ErrorMessages []string  `json:"errorMessages"`
	Duration      int64     `json:"duration"`
	Status        JobStatus `json:"status"`
}

func (r *JobResult) Response() JobResponse {
	msgs := r.ErrorMessages
	if msgs == nil {
		msgs = []string{}
	}
	return JobResponse{
		Success:       true,
		RunID:         r.RunID,
		Platform:      r.Platform,
		SourceID:      r.SourceID,
		SearchQuery:   r.SearchQuery,
		ItemsFetched:  r.ItemsFetched,
		NewItems:      r.NewItems,
		ErrorMessages: msgs,
		Duration:      r.Duration.Milliseconds(),
		Status:        r.Status,
	}
}

type LastResult struct {
	ItemsFetched  int      `json:"itemsFetched" bson:"itemsFetched"`
	NewItems      int      `json:"newItems" bson:"newItems"`
	ErrorMessages []string `json:"errorMessages" bson:"errorMessages"`
	DurationMS    int64    `json:"duration" bson:"duration"`
}

// FetchJob is the ledger entry for one (platform, source) pair. Only the latest run is kept.
type FetchJob struct {
	Platform   Platform   `json:"platform" bson:"platform"`
	SourceID   string     `json:"sourceId" bson:"sourceId"`
	SourceType SourceType `json:"sourceType" bson:"sourceType"`
	SourceName string     `json:"sourceName" bson:"sourceName"`
	Status     JobStatus  `json:"status" bson:"status"`
	LastRun    time.Time  `json:"lastRun" bson:"lastRun"`
	LastResult LastResult `json:"lastResult" bson:"lastResult"`
	IsEnabled  bool       `json:"isEnabled" bson:"isEnabled"`
}
