package quiz

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AccessKey   string `json:"access_key,omitempty"` // owner/admin view only
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

type Quiz struct {
	ID              string     `json:"id"`
	CourseID        string     `json:"course_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	NumberToDisplay int        `json:"number_to_display"`
	Questions       []Question `json:"questions,omitempty"`
	CreatedAt       int64      `json:"created_at,omitempty"`
}

type Question struct {
	ID           string            `json:"id"`
	QuizID       string            `json:"quiz_id,omitempty"`
	QuestionText string            `json:"question_text"`
	QuestionType string            `json:"question_type"`
	Options      map[string]string `json:"options,omitempty"`
	// comma-separated option keys for choice types, free text for open_ended;
	// stripped from student payloads
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Position      int    `json:"position,omitempty"`
}

// SubmittedAnswer is one item of a quiz submission.
type SubmittedAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// Score is the outcome of one scored submission.
type Score struct {
	ResultID   string  `json:"result_id"`
	Correct    int     `json:"correct_answers"`
	Total      int     `json:"total_questions"`
	Percentage float64 `json:"percentage"`
}

// ResultRow is one scored attempt as listed for teachers and students.
type ResultRow struct {
	ID          string `json:"id"`
	QuizID      string `json:"quiz_id"`
	QuizTitle   string `json:"quiz_title,omitempty"`
	Username    string `json:"username"`
	Correct     int    `json:"correct_answers"`
	Total       int    `json:"total_questions"`
	CompletedAt int64  `json:"completed_at"`
}

type Enrollment struct {
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	JoinedAt int64  `json:"joined_at"`
	Active   bool   `json:"active"`
}

type RoleCode struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Role      string `json:"role"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
	Active    bool   `json:"active"`
}
