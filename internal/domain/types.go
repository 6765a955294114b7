package domain

// RunState represents the lifecycle state of a pipeline run
type RunState string

const (
	RunIdle      RunState = "idle"
	RunStarting  RunState = "starting"
	RunStreaming RunState = "streaming"
	RunDone      RunState = "done"
	RunFailed    RunState = "failed"
)

// RunKind selects how much of the synchronization pipeline runs
type RunKind string

const (
	RunFull    RunKind = "full"
	RunPartial RunKind = "partial"
)

// TaskStatus represents the lifecycle state of an academic task
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskReady   TaskStatus = "ready"
	TaskBlocked TaskStatus = "blocked"
	TaskDone    TaskStatus = "done"
)

// TaskPriority represents task urgency
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// Grade item types as reported by the scraper
const (
	ItemAssignment = "assignment"
	ItemQuiz       = "quiz"
)
