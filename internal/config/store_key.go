package config

import (
	"fmt"
)

type StoreKeyStruct struct{}

func NewStoreKeyStruct() *StoreKeyStruct {
	return &StoreKeyStruct{}
}

// SessionKey returns the store key for an in-progress session of the
// given kind ("exam" or "learning").
func (r *StoreKeyStruct) SessionKey(kind string) string {
	return fmt.Sprintf("session:%s", kind)
}

// QuestionBanksKey returns the store key for the question-bank list.
func (r *StoreKeyStruct) QuestionBanksKey() string {
	return "question_banks"
}

// LearningProgressKey returns the store key for the per-bank learning
// progress ledger.
func (r *StoreKeyStruct) LearningProgressKey() string {
	return "learning_progress"
}

// ExamRecordsKey returns the store key for the exam history list.
func (r *StoreKeyStruct) ExamRecordsKey() string {
	return "exam_records"
}

// SettingsKey returns the store key for the application settings blob.
func (r *StoreKeyStruct) SettingsKey() string {
	return "app_settings"
}

var StoreKey = NewStoreKeyStruct()
