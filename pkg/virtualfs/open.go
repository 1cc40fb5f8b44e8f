package virtualfs

import (
	"fmt"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
)

// OpenFromConfig opens the backend named by [Storage] backend.
func OpenFromConfig() (Store, error) {
	backend := configuration.GetString("Storage", "backend", "sqlite")
	switch backend {
	case "sqlite":
		dbPath := configuration.GetString("Storage", "database", "retrobasic.db")
		db, err := InitDB(dbPath)
		if err != nil {
			return nil, err
		}
		if err := CreateTables(db); err != nil {
			db.Close()
			return nil, err
		}
		volume := configuration.GetString("Storage", "volume", "default")
		logger.Info(logger.AreaFileSystem, "using sqlite storage %s, volume %s", dbPath, volume)
		return New(db, volume), nil
	case "disk":
		dir := configuration.GetString("Storage", "directory", "programs")
		logger.Info(logger.AreaFileSystem, "using disk storage in %s", dir)
		disk, err := NewDiskFS(dir)
		if err != nil {
			return nil, err
		}
		return disk, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
