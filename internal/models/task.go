package models

// NewsTask is a saved discovery query. Running a task asks the remote API to
// enqueue an asynchronous content discovery pass; tasks carry no client-side
// derived state.
type NewsTask struct {
	ID             string `json:"id"`
	Query          string `json:"query"`
	AccountName    string `json:"account_name,omitempty"`
	CollectionUUID string `json:"collection_uuid,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}
