package storage

import (
	"os"
)

// DatabaseDiskUsage returns the bytes used by a SQLite database, including its
// write-ahead log and shared-memory files. Missing files count as zero.
func DatabaseDiskUsage(dbPath string) (int64, error) {
	if dbPath == "" {
		return 0, nil
	}
	var total int64
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
		}
	}
	return total, nil
}
