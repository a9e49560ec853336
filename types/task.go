package types

// Task names carried on the queue
const (
	TaskExtractCaptions = "extract_captions"
	TaskArchiveFile     = "archive_file"
)

// Task is a single unit of queued work.
type Task struct {
	Name        string `json:"name"`
	JobID       string `json:"job_id,omitempty"`
	Owner       string `json:"owner"`
	FilePath    string `json:"file_path"`
	DisplayName string `json:"display_name"`
}
