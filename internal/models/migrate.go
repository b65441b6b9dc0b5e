package models

// Migratable lists the tables owned by this service, in dependency order
func Migratable() []interface{} {
	return []interface{}{
		&Course{},
		&Enrollment{},
		&Exam{},
		&Question{},
		&AnswerLog{},
		&ExamResult{},
	}
}
