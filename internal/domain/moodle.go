package domain

// Course is a scraped Moodle course
type Course struct {
	ID         int    `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	LastSeenAt string `json:"last_seen_at"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Module is a scraped Moodle course module
type Module struct {
	ID          int     `json:"id"`
	CourseID    int     `json:"course_id"`
	ExternalID  string  `json:"external_id"`
	Title       string  `json:"title"`
	Visible     bool    `json:"visible"`
	Blocked     bool    `json:"blocked"`
	BlockReason string  `json:"block_reason,omitempty"`
	HasSurvey   bool    `json:"has_survey"`
	URL         string  `json:"url,omitempty"`
	LastSeenAt  string  `json:"last_seen_at"`
	Course      *Course `json:"course,omitempty"`
}

// GradeItem is one gradable activity (assignment, quiz, ...)
type GradeItem struct {
	ID               int      `json:"id"`
	CourseID         int      `json:"course_id"`
	ExternalID       string   `json:"external_id"`
	ItemType         string   `json:"item_type"`
	Title            string   `json:"title"`
	GradeValue       *float64 `json:"grade_value"`
	GradeDisplay     string   `json:"grade_display,omitempty"`
	URL              string   `json:"url,omitempty"`
	AvailableAt      string   `json:"available_at,omitempty"`
	DueAt            string   `json:"due_at,omitempty"`
	SubmissionStatus string   `json:"submission_status,omitempty"`
	GradingStatus    string   `json:"grading_status,omitempty"`
	LastSeenAt       string   `json:"last_seen_at"`
	Course           *Course  `json:"course,omitempty"`
}

// Survey is a pending or completed module survey
type Survey struct {
	ID            int     `json:"id"`
	ModuleID      int     `json:"module_id"`
	CourseID      int     `json:"course_id"`
	ExternalID    string  `json:"external_id"`
	Title         string  `json:"title"`
	URL           string  `json:"url,omitempty"`
	CompletionURL string  `json:"completion_url,omitempty"`
	LastSeenAt    string  `json:"last_seen_at"`
	CompletedAt   string  `json:"completed_at,omitempty"`
	Course        *Course `json:"course,omitempty"`
	Module        *Module `json:"module,omitempty"`
}

// VaultStatus reports whether Moodle credentials are stored server-side
type VaultStatus struct {
	HasCredentials bool `json:"has_credentials"`
	CronEnabled    bool `json:"cron_enabled"`
}
