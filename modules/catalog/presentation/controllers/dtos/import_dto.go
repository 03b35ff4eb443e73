package dtos

type ImportRecordResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	FileSize     int64  `json:"fileSize"`
	Checksum     string `json:"checksum"`
	RowCount     int    `json:"rowCount"`
	CreatedCount int    `json:"createdCount"`
	UpdatedCount int    `json:"updatedCount"`
	ImportedBy   string `json:"importedBy,omitempty"`
	Rollbackable bool   `json:"rollbackable"`
	CreatedAt    string `json:"createdAt"`
}

// RollbackableImportResponse annotates an eligible import with what
// its snapshot captured and what a rollback of it would do.
type RollbackableImportResponse struct {
	ImportRecordResponse
	CapturedParts           int `json:"capturedParts"`
	CapturedApplications    int `json:"capturedApplications"`
	CapturedCrossReferences int `json:"capturedCrossReferences"`
	DeletedParts            int `json:"deletedParts"`
}
