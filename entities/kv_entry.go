package entities

// KVEntry is one persisted key-value pair; values are JSON documents.
type KVEntry struct {
	StorageKey string `gorm:"type:varchar(255);primary_key" json:"storage_key"`
	Value      string `gorm:"type:text;not null" json:"value"`

	Timestamp
}

func (KVEntry) TableName() string { return "kv_entries" }
