package models

// ItemsetCache records a fast external itemset table built from a form's
// itemsets.csv media file.
type ItemsetCache struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	CSVPath string `json:"csvPath" gorm:"column:csv_path;index;not null"`
	CSVHash string `json:"csvHash" gorm:"column:csv_hash"`
	Table   string `json:"table" gorm:"column:table_name"`
}
