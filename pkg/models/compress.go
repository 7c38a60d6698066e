package models

// ErrorBody is the structured error carried inside a failure response.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// CompressResponse is the wire shape of POST /api/compress. The endpoint
// answers 200 OK for handled failures too; callers branch on Success, never
// on the transport status.
type CompressResponse struct {
	Success bool       `json:"success"`
	Data    string     `json:"data,omitempty"`
	Extra   string     `json:"extra,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// CompressionResult is the in-process outcome of one pipeline run. It is
// serialized into the response immediately and never persisted.
type CompressionResult struct {
	CompressedBytes []byte
	SourcePath      string
	OriginalSize    int64
}
