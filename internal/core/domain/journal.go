package domain

// Journal is a named grouping of transactions (e.g. "GENERAL", "SALES").
// Journals are created administratively and rarely mutated.
type Journal struct {
	JournalID   string `json:"journalID"`   // Primary Key (UUID)
	Name        string `json:"name"`        // Unique name
	Description string `json:"description"` // Optional description
	AuditFields
}
