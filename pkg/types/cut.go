package types

// Compression algorithms for cached cut results
const (
	CompressionNone   = "none"
	CompressionSnappy = "snappy"
	CompressionLZ4    = "lz4"
)

// CompressionMinSize is the smallest cached value, in bytes, that gets compressed.
const CompressionMinSize = 1024

// MaxBatchItems bounds the number of items in one batch request.
const MaxBatchItems = 100

// CutRequest is the body of POST /cut and one item of POST /cut/batch.
// Nil optional fields fall back to the service configuration.
type CutRequest struct {
	HTML            string  `json:"html"`
	Length          *int    `json:"length,omitempty"`
	Paragraphs      int     `json:"paragraphs,omitempty"`
	Marker          *string `json:"marker,omitempty"`
	StripDenylisted *bool   `json:"strip_denylisted,omitempty"`
}

// CutBatchRequest is the body of POST /cut/batch.
type CutBatchRequest struct {
	Items []CutRequest `json:"items"`
}

// CutResult describes one truncation.
type CutResult struct {
	HTML          string `json:"html"`
	Truncated     bool   `json:"truncated"`
	InitialLength int    `json:"initial_length"`
	FinalLength   int    `json:"final_length"`
	Cached        bool   `json:"cached"`
}

// BatchItemResult is the outcome of one batch item; Error is set instead of
// Result when the item failed.
type BatchItemResult struct {
	Index  int        `json:"index"`
	Result *CutResult `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// CutBatchResponse holds item results in request order.
type CutBatchResponse struct {
	Items []BatchItemResult `json:"items"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Status        string `json:"status"`
	CacheEnabled  bool   `json:"cache_enabled"`
	Redis         string `json:"redis,omitempty"`
	DefaultLength int    `json:"default_length"`
	CacheHits     uint64 `json:"cache_hits"`
	CacheMisses   uint64 `json:"cache_misses"`
}
