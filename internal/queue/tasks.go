package queue

const TypeDocumentProcess = "document:process"

type DocumentProcessPayload struct {
	DocumentID string `json:"document_id"`
	OwnerID    string `json:"owner_id"`
}

// documentTaskID de-duplicates enqueues for the same document while a task
// for it is still pending or running.
func documentTaskID(documentID string) string {
	return "process:" + documentID
}
