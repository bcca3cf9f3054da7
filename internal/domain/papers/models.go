package papers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Question is an accepted question. Rows are never updated once written.
type Question struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Subject          string    `gorm:"column:subject;not null;index" json:"subject"`
	Topic            string    `gorm:"column:topic;not null" json:"topic"`
	SyllabusUnit     string    `gorm:"column:syllabus_unit;not null" json:"syllabus_unit"`
	ConceptTag       string    `gorm:"column:concept_tag;not null" json:"concept_tag"`
	QuestionFormat   string    `gorm:"column:question_format;not null" json:"question_format"`
	SourceType       string    `gorm:"column:source_type;not null" json:"source_type"`
	QuestionText     string    `gorm:"column:question_text;type:text;not null" json:"question_text"`
	OptionA          string    `gorm:"column:option_a;type:text;not null" json:"option_a"`
	OptionB          string    `gorm:"column:option_b;type:text;not null" json:"option_b"`
	OptionC          string    `gorm:"column:option_c;type:text;not null" json:"option_c"`
	OptionD          string    `gorm:"column:option_d;type:text;not null" json:"option_d"`
	CorrectOption    string    `gorm:"column:correct_option;size:1;not null" json:"correct_option"`
	Explanation      string    `gorm:"column:explanation;type:text;not null" json:"explanation"`
	Difficulty       string    `gorm:"column:difficulty;not null" json:"difficulty"`
	ProbabilityScore float64   `gorm:"column:probability_score;not null" json:"probability_score"`
	ConfidenceScore  float64   `gorm:"column:confidence_score;not null" json:"confidence_score"`
	VerificationFlag string    `gorm:"column:verification_flag;not null" json:"verification_flag"`
	HashSignature    string    `gorm:"column:hash_signature;size:64;not null;index" json:"hash_signature"`
	DateGenerated    string    `gorm:"column:date_generated;size:10;not null;index" json:"date_generated"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Question) TableName() string { return "question" }

type DailyPaper struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PaperDate      string    `gorm:"column:paper_date;size:10;not null;uniqueIndex" json:"paper_date"`
	PhysicsCount   int       `gorm:"column:physics_count;not null" json:"physics_count"`
	ChemistryCount int       `gorm:"column:chemistry_count;not null" json:"chemistry_count"`
	BiologyCount   int       `gorm:"column:biology_count;not null" json:"biology_count"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (DailyPaper) TableName() string { return "daily_paper" }

// DailyPaperQuestion places a question in a paper. QuestionOrder is the
// 1-based slot position across the whole paper.
type DailyPaperQuestion struct {
	PaperID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"paper_id"`
	QuestionOrder int       `gorm:"column:question_order;primaryKey" json:"question_order"`
	QuestionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
}

func (DailyPaperQuestion) TableName() string { return "daily_paper_question" }

type GenerationLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunDate     string         `gorm:"column:run_date;size:10;not null;index" json:"run_date"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	TriggeredBy string         `gorm:"column:triggered_by;not null" json:"triggered_by"`
	Message     string         `gorm:"column:message;type:text" json:"message"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (GenerationLog) TableName() string { return "generation_log" }

// TopicWeight holds the admin topic weights of one subject as topic -> weight.
type TopicWeight struct {
	Subject   string         `gorm:"column:subject;primaryKey" json:"subject"`
	Weights   datatypes.JSON `gorm:"column:weights;type:jsonb;not null" json:"weights"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (TopicWeight) TableName() string { return "topic_weight" }

// PaperWithQuestions is the read model of one day's paper.
type PaperWithQuestions struct {
	Paper     DailyPaper `json:"paper"`
	Questions []Question `json:"questions"`
}

// DuplicateStat compares total and distinct hashes for one paper date.
type DuplicateStat struct {
	PaperDate      string `json:"paper_date"`
	TotalQuestions int    `json:"total_questions"`
	UniqueHashes   int    `json:"unique_hashes"`
}
