package repos

import (
	"gorm.io/gorm"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos/notes"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

type AINoteRepo = notes.AINoteRepo
type AIFeedbackRepo = notes.AIFeedbackRepo
type AuditLogRepo = notes.AuditLogRepo
type ReportRepo = notes.ReportRepo

type FeedbackStats = notes.FeedbackStats

func NewAINoteRepo(db *gorm.DB, baseLog *logger.Logger) AINoteRepo {
	return notes.NewAINoteRepo(db, baseLog)
}
func NewAIFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) AIFeedbackRepo {
	return notes.NewAIFeedbackRepo(db, baseLog)
}
func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return notes.NewAuditLogRepo(db, baseLog)
}
func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return notes.NewReportRepo(db, baseLog)
}
