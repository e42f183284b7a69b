package schema

import "time"

// CacheStatus represents the status of the result cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AnalysisStatus represents the status of the analysis run store.
type AnalysisStatus struct {
	Backend              string           `json:"backend"`
	Connected            bool             `json:"connected"`
	TotalRuns            int              `json:"total_runs"`
	LastRunID            int64            `json:"last_run_id"`
	LastRunTime          time.Time        `json:"last_run_time"`
	OldestRunTime        time.Time        `json:"oldest_run_time"`
	TotalRecordsAnalyzed int              `json:"total_records_analyzed"`
	TableSizes           map[string]int64 `json:"table_sizes"`
}

// ModelInfo describes a loaded classifier for display.
type ModelInfo struct {
	Name        string    `json:"name"`
	Kind        ModelKind `json:"kind"`
	Path        string    `json:"path"`
	Features    []string  `json:"features"`
	Classes     []int     `json:"classes"`
	Trees       int       `json:"trees,omitempty"`
	Fingerprint string    `json:"fingerprint"`
}
