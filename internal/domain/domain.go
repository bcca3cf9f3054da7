package domain

import "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/domain/papers"

type Question = papers.Question
type DailyPaper = papers.DailyPaper
type DailyPaperQuestion = papers.DailyPaperQuestion
type GenerationLog = papers.GenerationLog
type TopicWeight = papers.TopicWeight
type PaperWithQuestions = papers.PaperWithQuestions
type DuplicateStat = papers.DuplicateStat

const (
	GenerationStatusSuccess = "success"
	GenerationStatusFailed  = "failed"
)
