package services

import (
	"strings"

	"github.com/coursehub/exam-service/internal/models"
)

// Compact question grammar:
//
//	prompt---opt1=opt2=opt3---correct;prompt---***---expected;;;trailing notes
//
// Everything after the first ";;;" is ignored. The "***" sentinel marks an open-ended question.
const (
	segmentMarker  = ";;;"
	entrySeparator = ";"
	fieldSeparator = "---"
	optionJoiner   = "="
	openSentinel   = "***"
)

type questionParser struct{}

func NewQuestionParser() QuestionParser {
	return questionParser{}
}

// ParseQuestions never fails as a whole. Malformed entries are skipped and reported as
// warnings; blank entries are skipped silently.
func (questionParser) ParseQuestions(text string, owner models.QuestionOwner) ([]*models.Question, []ParseWarning) {
	segment, _, _ := strings.Cut(text, segmentMarker)

	var (
		questions []*models.Question
		warnings  []ParseWarning
	)

	for i, entry := range strings.Split(segment, entrySeparator) {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		fields := strings.Split(entry, fieldSeparator)
		if len(fields) < 2 {
			warnings = append(warnings, ParseWarning{
				Entry:  i + 1,
				Text:   strings.TrimSpace(entry),
				Reason: "expected at least a prompt and an answer field separated by " + fieldSeparator,
			})
			continue
		}

		q := &models.Question{
			ExamID:   owner.ExamID,
			LessonID: owner.LessonID,
			Position: len(questions),
			Prompt:   strings.TrimSpace(fields[0]),
		}

		if optionField := strings.TrimSpace(fields[1]); optionField != openSentinel {
			options := strings.Split(optionField, optionJoiner)
			for j := range options {
				options[j] = strings.TrimSpace(options[j])
			}
			q.Options = options
		}
		if len(fields) > 2 {
			q.CorrectAnswer = strings.TrimSpace(fields[2])
		}

		questions = append(questions, q)
	}

	return questions, warnings
}
