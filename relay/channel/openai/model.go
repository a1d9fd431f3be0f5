package openai

// ImageEditRequest is one image-to-image enhancement call. ImageName only
// affects the multipart filename; the sniffed content type rides along so
// the part gets the right MIME header.
type ImageEditRequest struct {
	Image     []byte
	ImageName string
	MimeType  string
	Prompt    string
	Model     string
	Size      string
}

// ImageEditResult carries the winning image plus how many rate-limit
// retries it took to get it.
type ImageEditResult struct {
	URL     string
	B64JSON string
	Retries int
}

type imageDatum struct {
	Url     string `json:"url,omitempty"`
	B64Json string `json:"b64_json,omitempty"`
}

type imageEditResponse struct {
	Created int64        `json:"created,omitempty"`
	Data    []imageDatum `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code,omitempty"`
	} `json:"error"`
}
