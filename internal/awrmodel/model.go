// Package awrmodel holds the shared data shapes that flow through the
// analysis pipeline: parsed tables, snapshot metadata, unified metrics,
// normalized signals, decision results, generated artifacts and findings.
package awrmodel

import "time"

// TableName is one of the closed set of extracted table kinds.
type TableName string

const (
	TableSQLStats      TableName = "sql_stats"
	TableWaitEvents    TableName = "wait_events"
	TableInstanceStats TableName = "instance_stats"
	TableLoadProfile   TableName = "load_profile"
	TableMetadata      TableName = "metadata"
	TableASHActivity   TableName = "ash_activity_over_time"
	TableASHEvents     TableName = "ash_events"
	TableASHFeatures   TableName = "ash_features"
)

// Table is an extracted, normalized table: a header row plus data rows,
// all cells kept as strings. Numeric parsing is deferred to consumers.
type Table struct {
	Name    TableName
	Prefix  string
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the index of the first column matching any of the
// candidates, or -1. Candidates are tried in order; the first present
// column wins, preserving "first matching candidate wins" semantics.
func (t *Table) ColumnIndex(candidates ...string) int {
	for _, c := range candidates {
		for i, col := range t.Columns {
			if col == c {
				return i
			}
		}
	}
	return -1
}

// Cell returns row[idx] and true if idx is within bounds.
func (t *Table) Cell(row []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}

// SnapshotMetadata is the authoritative begin/end/elapsed/CPU metadata
// extracted directly from the AWR HTML header, independent of any CSV
// table. Timestamps are timezone-naive local time.
type SnapshotMetadata struct {
	BeginTime          time.Time
	EndTime            time.Time
	HasBeginTime       bool
	HasEndTime         bool
	ElapsedSeconds     float64
	HasElapsedSeconds  bool
	DBCPUSeconds       float64
	HasDBCPUSeconds    bool
	CPUCores           int
	HasCPUCores        bool
	InstanceCPUBusyPct float64
	HasInstanceCPUBusy bool
	HostCPUIdlePct     float64
	HasHostCPUIdle     bool
	ParseSuccess       bool
	ParseErrors        []string
}

// Bundle is a logical group of parsed HTML files sharing one workspace.
type Bundle struct {
	WorkspaceID string
	SourceFiles []string
	Tables      []*Table
	Metadata    *SnapshotMetadata
	IngestedAt  time.Time
}

// FindTable returns the first table whose name contains substr, or nil.
func (b *Bundle) FindTable(substr string) *Table {
	for _, t := range b.Tables {
		if string(t.Name) == substr {
			return t
		}
		if containsSubstr(string(t.Name), substr) {
			return t
		}
	}
	return nil
}

func containsSubstr(s, substr string) bool {
	if substr == "" {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// UnifiedMetrics is the single authoritative workload-metrics tuple for a
// bundle, computed once and shared read-only thereafter.
type UnifiedMetrics struct {
	TotalElapsedTimeS  float64
	TotalExecutions    float64
	TotalCPUTimeS      float64
	DBTimeS            float64
	DBCPUTimeS         float64
	IOWaitTimeS        float64
	SnapshotElapsedS   float64
	CPUCores           int
	InstanceCPUBusyPct float64
	HostCPUIdlePct     float64
	CPUPercentage      float64
	IOWaitPercentage   float64
	TimeWindowDisplay  string
	IsValid            bool
}

// NormalizedSignals is the fixed-shape projection of a raw SQL row used by
// the Decision Engine and Dynamic SQL Generator.
type NormalizedSignals struct {
	SQLID         string
	Executions    float64
	TotalElapsed  float64
	AvgExecTime   float64
	CPUTime       float64
	CPUPct        float64
	IOWaitPct     float64
	DBTimePct     float64
	SQLText       string
	SQLModule     string
	WaitClass     string
	HasSQLText    bool
	HasSQLModule  bool
	HasWaitClass  bool
}

// SQLCategory is the closed workload classification vocabulary.
type SQLCategory string

const (
	CategoryBatch       SQLCategory = "BATCH_SQL"
	CategoryChatty      SQLCategory = "CHATTY_SQL"
	CategoryIOBound     SQLCategory = "IO_BOUND_SQL"
	CategoryCPUBound    SQLCategory = "CPU_BOUND_SQL"
	CategoryMixed       SQLCategory = "MIXED_PROFILE_SQL"
	CategoryLowPriority SQLCategory = "LOW_PRIORITY"
)

// ActionType is the closed action vocabulary emitted by the Decision Engine.
type ActionType string

const (
	ActionPlanAnalysis          ActionType = "PLAN_ANALYSIS"
	ActionIndexReview           ActionType = "INDEX_REVIEW"
	ActionIndexCreation         ActionType = "INDEX_CREATION"
	ActionIOOptimization        ActionType = "IO_OPTIMIZATION"
	ActionAccessPathOptimize    ActionType = "ACCESS_PATH_OPTIMIZATION"
	ActionSQLAccessAdvisor      ActionType = "SQL_ACCESS_ADVISOR"
	ActionSQLTuningAdvisor      ActionType = "SQL_TUNING_ADVISOR"
	ActionSQLRewrite            ActionType = "SQL_REWRITE"
	ActionJoinMethodReview      ActionType = "JOIN_METHOD_REVIEW"
	ActionHashVsNestedAnalysis  ActionType = "HASH_VS_NESTED_ANALYSIS"
	ActionBindTuning            ActionType = "BIND_TUNING"
	ActionApplicationThrottling ActionType = "APPLICATION_THROTTLING"
	ActionResultCaching         ActionType = "RESULT_CACHING"
	ActionCPUTuning             ActionType = "CPU_TUNING"
	ActionJoinHints             ActionType = "JOIN_HINTS"
	ActionIndexOnlyFixes        ActionType = "INDEX_ONLY_FIXES"
	ActionMonitorOnly           ActionType = "MONITOR_ONLY"
)

// DecisionResult is the outcome of classifying a Normalized Signals value.
type DecisionResult struct {
	Category       SQLCategory
	AllowedActions []ActionType
	BlockedActions []ActionType
	Reasoning      []string
	WhyShown       []string
	WhyHidden      []string
	Signals        NormalizedSignals
}

// GeneratedSQL is one executable artifact produced by the Dynamic SQL
// Generator: its Fingerprint must appear verbatim as a comment line inside
// SQL.
type GeneratedSQL struct {
	Action ActionType
	// Label is the per-artifact diagnostic name (e.g. "OBJECT_IO_ANALYSIS",
	// "CARTESIAN_DETECTION"). Unlike Action, it is not drawn from a closed
	// vocabulary gated by the Decision Engine — it names what this specific
	// artifact diagnoses, one step finer-grained than its Action.
	Label             string
	SQL               string
	Intent            string
	Explanation       string
	Category          SQLCategory
	SignalFingerprint string
}

// ActionPlan is the four-tier remediation plan for one Finding.
type ActionPlan struct {
	Immediate         []string
	ShortTerm         []string
	MediumTerm        []string
	LongTerm          []string
	PriorityReasoning []string
}

// FixSection is one section of the Fix Recommendation Formatter output
// (spec.md §4.7b).
type FixSection struct {
	Kind                string
	Title               string
	Priority            string
	WhyShown            string
	ExpectedImprovement string
	Steps               []FixStep
}

// FixStep is a single numbered step inside a FixSection.
type FixStep struct {
	Title    string
	SQL      string
	WhyHelps string
	Priority string
}

// LoadReductionAction is one root-cause-classified action from the Load
// Reduction Engine (spec.md §4.7c).
type LoadReductionAction struct {
	RootCause string
	Title     string
	SQL       []string
	DBAAction string
	WhyHelps  string
	Priority  string
}

// ExecutionPattern labels the observed execution-frequency/duration shape
// of a problematic SQL (spec.md §4.8 step 4).
type ExecutionPattern struct {
	PatternType   string
	Description   string
	DBAAssessment string
	IsHighFreq    bool
	IsBursty      bool
	IsSustained   bool
}

// TechnicalParameters is the nested technical-parameters block of a Finding.
type TechnicalParameters struct {
	SQLID                   string
	Elapsed                 float64
	CPU                     float64
	AvgTime                 float64
	Executions              float64
	RiskLevel               string
	TotalElapsedTimeS       float64
	CPUTimeS                float64
	AvgElapsedPerExecS      float64
	ContributionToDBTimePct float64
	CPUPercentage           float64
	IOPercentage            float64
}

// Recommendations is the recommendations block of a Finding.
type Recommendations struct {
	TuningPriority      string
	PriorityDescription string
	WhatDBAShouldDoNext string
	DBAActionPlan       ActionPlan
	ExpectedImprovement string
	SQLCategory         SQLCategory
	AllowedActions      []ActionType
	BlockedActions      []ActionType
	WhyShown            []string
	WhyHidden           []string
}

// Finding is the per-SQL output of the DBA Expert Orchestrator.
type Finding struct {
	SQLID                string
	Severity             string
	PriorityScore        float64
	RiskLevel            string
	Explanation          string
	ProblemSummary       string
	TechnicalParameters  TechnicalParameters
	ExecutionPattern     ExecutionPattern
	DBAInterpretation    string
	Recommendations      Recommendations
	FixRecommendations   []FixSection
	LoadReductionActions []LoadReductionAction
	GeneratedSQL         []GeneratedSQL
	SQLTextPreview       string
}

// HighLoadPeriod is one classified high-load window (AWR or ASH sourced).
type HighLoadPeriod struct {
	Source      string // "AWR" or "ASH"
	Label       string
	Severity    string
	Details     string
	Start       time.Time
	End         time.Time
	DurationMin float64
	PeakAAS     float64
	PeakCPU     float64
}

// EnvelopeStatus is the closed status vocabulary of the result envelope.
type EnvelopeStatus string

const (
	StatusOK      EnvelopeStatus = "OK"
	StatusPartial EnvelopeStatus = "PARTIAL"
	StatusInvalid EnvelopeStatus = "INVALID"
)

// Envelope is the top-level result object returned by the orchestrator.
type Envelope struct {
	Status                  EnvelopeStatus
	WorkloadSummary         string
	ProblematicCount        int
	TotalAnalyzed           int
	ProblematicSQLFindings  []Finding
	DBAFinalConclusion      string
	DataIntegrityViolations []string
	AnalysisWindow          []HighLoadPeriod
	UnifiedMetrics          UnifiedMetrics
}
