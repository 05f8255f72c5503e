// Package ledger defines the execution, claim, and witness record types,
// their validation and line parsing, and the append-only date-bucketed
// storage operations that back all three ledgers.
package ledger

// SchemaVersion is the current record schema version written into every
// persisted record's "v" field.
const SchemaVersion = 1

// ActionType enumerates the 23 recognized execution action types.
type ActionType string

const (
	ActionFileRead         ActionType = "file.read"
	ActionFileWrite        ActionType = "file.write"
	ActionFileDelete       ActionType = "file.delete"
	ActionAPICall          ActionType = "api.call"
	ActionWebFetch         ActionType = "web.fetch"
	ActionWebSearch        ActionType = "web.search"
	ActionWebBrowse        ActionType = "web.browse"
	ActionExecCommand      ActionType = "exec.command"
	ActionExecScript       ActionType = "exec.script"
	ActionMessageSend      ActionType = "message.send"
	ActionMessageRead      ActionType = "message.read"
	ActionPaymentInitiate  ActionType = "payment.initiate"
	ActionPaymentConfirm   ActionType = "payment.confirm"
	ActionElevatedEnable   ActionType = "elevated.enable"
	ActionElevatedCommand  ActionType = "elevated.command"
	ActionCalendarCreate   ActionType = "calendar.create"
	ActionCalendarModify   ActionType = "calendar.modify"
	ActionSkillInvoke      ActionType = "skill.invoke"
	ActionMemoryRead       ActionType = "memory.read"
	ActionMemoryWrite      ActionType = "memory.write"
	ActionSessionSpawn     ActionType = "session.spawn"
	ActionSessionSend      ActionType = "session.send"
	ActionAPIAuth          ActionType = "api.auth"
)

var validActionTypes = map[ActionType]bool{
	ActionFileRead: true, ActionFileWrite: true, ActionFileDelete: true,
	ActionAPICall: true, ActionWebFetch: true, ActionWebSearch: true, ActionWebBrowse: true,
	ActionExecCommand: true, ActionExecScript: true,
	ActionMessageSend: true, ActionMessageRead: true,
	ActionPaymentInitiate: true, ActionPaymentConfirm: true,
	ActionElevatedEnable: true, ActionElevatedCommand: true,
	ActionCalendarCreate: true, ActionCalendarModify: true,
	ActionSkillInvoke: true,
	ActionMemoryRead: true, ActionMemoryWrite: true,
	ActionSessionSpawn: true, ActionSessionSend: true,
	ActionAPIAuth: true,
}

// IsValidActionType reports whether t is one of the 23 recognized types.
func IsValidActionType(t ActionType) bool {
	return validActionTypes[t]
}

// OutcomeStatus enumerates execution outcome statuses.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
	OutcomePartial OutcomeStatus = "partial"
	OutcomeBlocked OutcomeStatus = "blocked"
)

func (s OutcomeStatus) valid() bool {
	switch s {
	case OutcomeSuccess, OutcomeFailure, OutcomePartial, OutcomeBlocked:
		return true
	}
	return false
}

// RiskLabel enumerates the fixed risk-label vocabulary.
type RiskLabel string

const (
	RiskLabelFinancial      RiskLabel = "financial"
	RiskLabelDataAccess     RiskLabel = "data_access"
	RiskLabelCommunication  RiskLabel = "communication"
	RiskLabelEscalation     RiskLabel = "escalation"
	RiskLabelExecution      RiskLabel = "execution"
	RiskLabelUnknownTarget  RiskLabel = "unknown_target"
	RiskLabelHighFrequency  RiskLabel = "high_frequency"
)

var validRiskLabels = map[RiskLabel]bool{
	RiskLabelFinancial: true, RiskLabelDataAccess: true, RiskLabelCommunication: true,
	RiskLabelEscalation: true, RiskLabelExecution: true,
	RiskLabelUnknownTarget: true, RiskLabelHighFrequency: true,
}

// Action describes what an execution did.
type Action struct {
	Type   ActionType `json:"type"`
	Target string     `json:"target"`
	Detail string     `json:"detail,omitempty"`
}

// Context carries the goal/trigger/parent linkage for an execution.
type Context struct {
	Goal          string `json:"goal,omitempty"`
	Trigger       string `json:"trigger,omitempty"`
	ParentAction  string `json:"parentAction,omitempty"`
}

// Outcome describes the result of an execution.
type Outcome struct {
	Status     OutcomeStatus `json:"status"`
	Detail     string        `json:"detail,omitempty"`
	DurationMs *int64        `json:"durationMs,omitempty"`
}

// Risk carries the risk score, labels, and auto-flag state of an execution.
type Risk struct {
	Score       int         `json:"score"`
	Labels      []RiskLabel `json:"labels,omitempty"`
	AutoFlagged bool        `json:"autoFlagged"`
}

// AutoFlag computes the autoFlagged value for a score: true iff score >= 7.
func AutoFlag(score int) bool {
	return score >= 7
}

// Execution is a persisted record of an action the agent performed.
type Execution struct {
	ID       string                 `json:"id"`
	V        int                    `json:"v"`
	Ts       string                 `json:"ts"`
	PrevHash string                 `json:"prevHash"`
	Hash     string                 `json:"hash"`
	Agent    string                 `json:"agent"`
	Session  string                 `json:"session"`
	Action   Action                 `json:"action"`
	Context  Context                `json:"context"`
	Outcome  Outcome                `json:"outcome"`
	Risk     Risk                   `json:"risk"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

func (e *Execution) GetHash() string     { return e.Hash }
func (e *Execution) GetPrevHash() string { return e.PrevHash }

// ExpectedOutcome enumerates the claim intent's expected-outcome vocabulary.
type ExpectedOutcome string

const (
	ExpectedSuccess ExpectedOutcome = "success"
	ExpectedPartial ExpectedOutcome = "partial"
	ExpectedUnknown ExpectedOutcome = "unknown"
)

func (e ExpectedOutcome) valid() bool {
	switch e {
	case ExpectedSuccess, ExpectedPartial, ExpectedUnknown:
		return true
	}
	return false
}

// Intent describes what the agent declared it intended to do.
type Intent struct {
	PlannedAction    ActionType      `json:"plannedAction"`
	PlannedTarget    string          `json:"plannedTarget"`
	Goal             string          `json:"goal,omitempty"`
	ExpectedOutcome  ExpectedOutcome `json:"expectedOutcome"`
	SelfAssessedRisk int             `json:"selfAssessedRisk"`
}

// Constraints describes the declared scope boundaries of a claim.
type Constraints struct {
	WithinScope           bool `json:"withinScope"`
	RequiresElevation     bool `json:"requiresElevation"`
	InvolvesExternalComms bool `json:"involvesExternalComms"`
	InvolvesFinancial     bool `json:"involvesFinancial"`
}

// Claim is a persisted record of an action the agent declared it intended
// to perform.
type Claim struct {
	ID          string                 `json:"id"`
	V           int                    `json:"v"`
	Ts          string                 `json:"ts"`
	PrevHash    string                 `json:"prevHash"`
	Hash        string                 `json:"hash"`
	Agent       string                 `json:"agent"`
	Session     string                 `json:"session"`
	Intent      Intent                 `json:"intent"`
	Constraints Constraints            `json:"constraints"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

func (c *Claim) GetHash() string     { return c.Hash }
func (c *Claim) GetPrevHash() string { return c.PrevHash }

// WitnessSource enumerates the three independent observation sources.
type WitnessSource string

const (
	SourceFilesystem WitnessSource = "filesystem"
	SourceProcess    WitnessSource = "process"
	SourceNetwork    WitnessSource = "network"
)

// FileEventType enumerates filesystem witness event types.
type FileEventType string

const (
	FileCreated  FileEventType = "file_created"
	FileModified FileEventType = "file_modified"
	FileDeleted  FileEventType = "file_deleted"
	FileAccessed FileEventType = "file_accessed"
)

// ProcessEventType enumerates process witness event types.
type ProcessEventType string

const (
	ProcessSpawned ProcessEventType = "process_spawned"
	ProcessExited  ProcessEventType = "process_exited"
)

// NetworkEventType enumerates network witness event types.
type NetworkEventType string

const (
	ConnectionOpened NetworkEventType = "connection_opened"
	ConnectionClosed NetworkEventType = "connection_closed"
	DNSQuery         NetworkEventType = "dns_query"
)

// FileStat carries the optional stat block for file_created/file_modified
// events.
type FileStat struct {
	SizeBytes          int64  `json:"sizeBytes"`
	Mode               string `json:"mode"`
	Mtime              string `json:"mtime"`
	ContentHashPrefix  string `json:"contentHashPrefix,omitempty"`
}

// Event is the discriminated-union payload of a witness record: exactly one
// of the three variant field groups is populated, selected by Type.
type Event struct {
	Type WitnessEventType `json:"type"`

	// filesystem variant
	Path       string    `json:"path,omitempty"`
	ObservedAt string    `json:"observedAt"`
	Stat       *FileStat `json:"stat,omitempty"`

	// process variant
	Command  string `json:"command,omitempty"`
	PID      int    `json:"pid,omitempty"`
	PPID     int    `json:"ppid,omitempty"`
	ExitCode *int   `json:"exitCode,omitempty"`
	User     string `json:"user,omitempty"`
	Cwd      string `json:"cwd,omitempty"`

	// network variant
	RemoteHost string `json:"remoteHost,omitempty"`
	RemotePort *int   `json:"remotePort,omitempty"`
	Protocol   string `json:"protocol,omitempty"`
}

// WitnessEventType is the union of all file/process/network event type
// strings, used as Event.Type's field type.
type WitnessEventType string

// Witness is a persisted record of a host-level observation made
// independently of the agent.
type Witness struct {
	ID                string        `json:"id"`
	V                 int           `json:"v"`
	Ts                string        `json:"ts"`
	PrevHash          string        `json:"prevHash"`
	Hash              string        `json:"hash"`
	Source            WitnessSource `json:"source"`
	Event             Event         `json:"event"`
	Correlated        bool          `json:"correlated"`
	CorrelatedEntryID string        `json:"correlatedEntryId,omitempty"`
}

func (w *Witness) GetHash() string     { return w.Hash }
func (w *Witness) GetPrevHash() string { return w.PrevHash }
