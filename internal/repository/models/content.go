package models

import (
	"database/sql"
	"time"
)

// Subject is the SUBJECTS row.
type Subject struct {
	ID            string         `db:"ID"`
	Name          string         `db:"NAME"`
	Code          string         `db:"CODE"`
	Description   sql.NullString `db:"DESCRIPTION"`
	Syllabus      sql.NullString `db:"SYLLABUS"`
	IsCore        int            `db:"IS_CORE"`
	Topics        StringSlice    `db:"TOPICS"`
	QuestionCount int            `db:"QUESTION_COUNT"`
	Weightage     float64        `db:"WEIGHTAGE"`
	CreatedAt     time.Time      `db:"CREATED_AT"`
	UpdatedAt     time.Time      `db:"UPDATED_AT"`
}

// Topic is the TOPICS row. PARENT_TOPIC_ID is NULL for roots.
type Topic struct {
	ID            string         `db:"ID"`
	Name          string         `db:"NAME"`
	Code          string         `db:"CODE"`
	Description   sql.NullString `db:"DESCRIPTION"`
	SubjectID     string         `db:"SUBJECT_ID"`
	ParentTopicID sql.NullString `db:"PARENT_TOPIC_ID"`
	SubTopics     StringSlice    `db:"SUB_TOPICS"`
	QuestionCount int            `db:"QUESTION_COUNT"`
	Weightage     float64        `db:"WEIGHTAGE"`
	IsActive      int            `db:"IS_ACTIVE"`
	Resources     ResourceList   `db:"RESOURCES"`
	CreatedAt     time.Time      `db:"CREATED_AT"`
	UpdatedAt     time.Time      `db:"UPDATED_AT"`
}

// Question is the QUESTIONS row. Year and month live in EXAM_YEAR/EXAM_MONTH.
type Question struct {
	ID                    string         `db:"ID"`
	QuestionText          string         `db:"QUESTION_TEXT"`
	Options               OptionList     `db:"OPTIONS"`
	CorrectOption         int            `db:"CORRECT_OPTION"`
	Explanation           sql.NullString `db:"EXPLANATION"`
	Difficulty            string         `db:"DIFFICULTY"`
	SubjectID             string         `db:"SUBJECT_ID"`
	TopicID               string         `db:"TOPIC_ID"`
	Year                  int            `db:"EXAM_YEAR"`
	Month                 string         `db:"EXAM_MONTH"`
	Paper                 string         `db:"PAPER"`
	QuestionNumber        int            `db:"QUESTION_NUMBER"`
	OfficialAnswerKey     sql.NullString `db:"OFFICIAL_ANSWER_KEY"`
	OfficialAnswerKeyLink sql.NullString `db:"OFFICIAL_ANSWER_KEY_LINK"`
	IsVerified            int            `db:"IS_VERIFIED"`
	AddedBy               sql.NullString `db:"ADDED_BY"`
	Tags                  StringSlice    `db:"TAGS"`
	TotalAttempts         int            `db:"TOTAL_ATTEMPTS"`
	CorrectAttempts       int            `db:"CORRECT_ATTEMPTS"`
	Accuracy              float64        `db:"ACCURACY"`
	CreatedAt             time.Time      `db:"CREATED_AT"`
	UpdatedAt             time.Time      `db:"UPDATED_AT"`
}

// QuestionStats is the projection read back after an attempt increment.
type QuestionStats struct {
	TotalAttempts   int     `db:"TOTAL_ATTEMPTS"`
	CorrectAttempts int     `db:"CORRECT_ATTEMPTS"`
	Accuracy        float64 `db:"ACCURACY"`
}

// YearBucket and DifficultyBucket are GROUP BY projections.
type YearBucket struct {
	Year  int `db:"EXAM_YEAR"`
	Count int `db:"CNT"`
}

type DifficultyBucket struct {
	Difficulty string `db:"DIFFICULTY"`
	Count      int    `db:"CNT"`
}

// User is the USERS row.
type User struct {
	ID           string    `db:"ID"`
	Name         string    `db:"NAME"`
	Email        string    `db:"EMAIL"`
	PasswordHash string    `db:"PASSWORD_HASH"`
	Role         string    `db:"ROLE"`
	CreatedAt    time.Time `db:"CREATED_AT"`
	UpdatedAt    time.Time `db:"UPDATED_AT"`
}
