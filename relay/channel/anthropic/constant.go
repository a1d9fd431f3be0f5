package anthropic

const (
	ChannelName = "anthropic"

	messagesPath = "/messages"

	defaultModel     = "claude-3-5-sonnet-20241022"
	defaultMaxTokens = 300
)

// describeGuidance steers the vision step toward a literal subject
// description usable as an engraving prompt.
const describeGuidance = "Describe the main subject of this image literally and concretely. " +
	"If it is a person, state apparent gender and approximate age. " +
	"If it is an animal, state the species and breed if recognizable. " +
	"One or two short sentences, no commentary."

// stylizeTemplate asks for the fixed jewelry-design phrasing. The reply must
// start with the required prefix; enforceStylePrefix repairs it if not.
const stylizeTemplate = "Rewrite the following description as a jewelry engraving concept. " +
	"Reply with exactly one sentence that starts with \"Flat circle with\" and nothing else.\n\nDescription: %s"

// StylePrefix is the required leading phrase of every stylized description.
const StylePrefix = "Flat circle with"
