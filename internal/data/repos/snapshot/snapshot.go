package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/platform/dbctx"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

type ConsoleSnapshotRepo interface {
	Ensure(dbc dbctx.Context, consoleID uuid.UUID, sessionKey string) error
	Get(dbc dbctx.Context, consoleID uuid.UUID) (*domain.ConsoleSnapshot, error)
	ListUpdatedSince(dbc dbctx.Context, since time.Time) ([]*domain.ConsoleSnapshot, error)
	MergePatch(dbc dbctx.Context, consoleID uuid.UUID, patch json.RawMessage) error
	Delete(dbc dbctx.Context, consoleID uuid.UUID) error
}

type consoleSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConsoleSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) ConsoleSnapshotRepo {
	return &consoleSnapshotRepo{
		db:  db,
		log: baseLog.With("repo", "ConsoleSnapshotRepo"),
	}
}

func (r *consoleSnapshotRepo) Ensure(dbc dbctx.Context, consoleID uuid.UUID, sessionKey string) error {
	if consoleID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	row := &domain.ConsoleSnapshot{
		ConsoleID:     consoleID,
		SessionKey:    sessionKey,
		SchemaVersion: domain.SessionSchemaVersion,
		Data:          datatypes.JSON("{}"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return dbc.Handle(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}

func (r *consoleSnapshotRepo) Get(dbc dbctx.Context, consoleID uuid.UUID) (*domain.ConsoleSnapshot, error) {
	if consoleID == uuid.Nil {
		return nil, nil
	}
	var row domain.ConsoleSnapshot
	if err := dbc.Handle(r.db).
		Where("console_id = ?", consoleID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ConsoleID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *consoleSnapshotRepo) ListUpdatedSince(dbc dbctx.Context, since time.Time) ([]*domain.ConsoleSnapshot, error) {
	var rows []*domain.ConsoleSnapshot
	if err := dbc.Handle(r.db).
		Where("updated_at >= ?", since.UTC()).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MergePatch replaces the top-level keys of the stored blob with those of patch.
// A missing row is created. schema_version in the patch moves the row's version.
func (r *consoleSnapshotRepo) MergePatch(dbc dbctx.Context, consoleID uuid.UUID, patch json.RawMessage) error {
	if consoleID == uuid.Nil {
		return fmt.Errorf("console id required")
	}
	return dbc.Handle(r.db).Transaction(func(tx *gorm.DB) error {
		var row domain.ConsoleSnapshot
		if err := tx.Where("console_id = ?", consoleID).Limit(1).Find(&row).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		if row.ConsoleID == uuid.Nil {
			row = domain.ConsoleSnapshot{
				ConsoleID:     consoleID,
				SchemaVersion: domain.SessionSchemaVersion,
				CreatedAt:     now,
			}
		}
		merged, version, err := mergeJSONObjects(json.RawMessage(row.Data), patch)
		if err != nil {
			return fmt.Errorf("merge snapshot patch: %w", err)
		}
		row.Data = datatypes.JSON(merged)
		if version > 0 {
			row.SchemaVersion = version
		}
		row.UpdatedAt = now
		return tx.Save(&row).Error
	})
}

func (r *consoleSnapshotRepo) Delete(dbc dbctx.Context, consoleID uuid.UUID) error {
	if consoleID == uuid.Nil {
		return nil
	}
	return dbc.Handle(r.db).
		Where("console_id = ?", consoleID).
		Delete(&domain.ConsoleSnapshot{}).Error
}

func mergeJSONObjects(base, patch json.RawMessage) (json.RawMessage, int, error) {
	baseObj := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &baseObj); err != nil {
			return nil, 0, err
		}
		if baseObj == nil {
			baseObj = map[string]json.RawMessage{}
		}
	}
	var patchObj map[string]json.RawMessage
	if len(patch) > 0 {
		if err := json.Unmarshal(patch, &patchObj); err != nil {
			return nil, 0, err
		}
	}
	for k, v := range patchObj {
		baseObj[k] = v
	}

	version := 0
	if raw, ok := patchObj["schema_version"]; ok {
		_ = json.Unmarshal(raw, &version)
	}

	merged, err := json.Marshal(baseObj)
	if err != nil {
		return nil, 0, err
	}
	return merged, version, nil
}
