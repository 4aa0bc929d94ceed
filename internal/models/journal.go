package models

// Journal represents a named transaction grouping as stored.
type Journal struct {
	JournalID   string `db:"journal_id"`
	Name        string `db:"name"` // Unique
	Description string `db:"description"`
	AuditFields
}
