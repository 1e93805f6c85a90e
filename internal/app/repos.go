package app

import (
	"gorm.io/gorm"

	"github.com/tissage-sgq/shiftconsole/internal/data/repos/snapshot"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

type Repos struct {
	Snapshots snapshot.ConsoleSnapshotRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Snapshots: snapshot.NewConsoleSnapshotRepo(db, log),
	}
}
