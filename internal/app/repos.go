package app

import (
	"gorm.io/gorm"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

type Repos struct {
	Notes    repos.AINoteRepo
	Feedback repos.AIFeedbackRepo
	Audit    repos.AuditLogRepo
	Reports  repos.ReportRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Notes:    repos.NewAINoteRepo(db, log),
		Feedback: repos.NewAIFeedbackRepo(db, log),
		Audit:    repos.NewAuditLogRepo(db, log),
		Reports:  repos.NewReportRepo(db, log),
	}
}
