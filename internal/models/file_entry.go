package models

// FileEntry is a metadata row mapping a caller key to a file stored in the
// cache folder. The table name is chosen per cache instance, so callers scope
// queries with db.Table(name).
type FileEntry struct {
	Key       string `gorm:"column:key;primaryKey;size:255"`
	FileName  string `gorm:"column:file_name;size:1024"`
	Timestamp string `gorm:"column:timestamp;size:32"`
}
