package models

// SequenceModel stores the last identifier handed out for a named sequence
type SequenceModel struct {
	Name  string `gorm:"type:varchar(64);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "id_sequences"
}

// AllModels returns every persistence model, in dependency order, for AutoMigrate
func AllModels() []any {
	return []any{
		&SequenceModel{},
		&CustomerModel{},
		&OpportunityModel{},
	}
}
