package openai

const (
	ChannelName = "openai"

	imageEditPath = "/images/edits"

	defaultModel = "gpt-image-1"
	defaultSize  = "1024x1024"
)
