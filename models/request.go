package models

// ExtractTextRequest asks the service to pull a document from the document
// store, extract its text and index the chunks.
type ExtractTextRequest struct {
	BlobName string `json:"blob_name" binding:"required"`
}

// AnalyzeRequest supplies the text for an analysis operation either inline
// or by naming a previously indexed source document.
type AnalyzeRequest struct {
	Source string `json:"source,omitempty"`
	Text   string `json:"text,omitempty"`
}

// SearchRequest queries the chunk index. Mode is "text" (keyword) or
// "vector" (embedding similarity); it defaults to "text".
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Mode  string `json:"mode,omitempty"`
	TopK  int    `json:"top_k,omitempty"`
}
