package database

import (
	"fmt"

	"github.com/yukikurage/crm-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// leadIndexes back the viewer-scoped lead queries.
var leadIndexes = []struct {
	name    string
	columns string
}{
	{"idx_leads_org_agent", "organization_id, agent_id"},
	{"idx_leads_org_category", "organization_id, category_id"},
	{"idx_leads_created_at", "created_at"},
}

// AddIndexes creates the composite lead indexes that struct tags don't declare.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()

	for _, idx := range leadIndexes {
		if migrator.HasIndex(&models.Lead{}, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON leads (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("columns", idx.columns))
	}

	return nil
}
