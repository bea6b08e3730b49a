package api

import "encoding/json"

// HistoryItem is one stored upload as reported by GET /history. Identity is
// the server-assigned ID; items are immutable apart from deletion.
type HistoryItem struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	FileURL    string `json:"file_url"`
	UploadTime string `json:"upload_time"`
	Channel    string `json:"channel"`
	FileSize   int64  `json:"file_size,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// UploadResult is the payload of a successful upload.
type UploadResult struct {
	FileURL string `json:"file_url"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// envelope is the common response shape: status 0 means success, anything
// else carries a user-facing message.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}
