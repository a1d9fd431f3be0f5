package tripo

const ChannelName = "tripo"

const (
	createTaskPath = "/task"
	taskStatusPath = "/task/%s"
)

// SyntheticProgress is the placeholder progress reported when the upstream
// response cannot be used (transport failure, malformed body, masked auth
// error). Fail soft into progress: the polling UI never hard-fails on a
// transient bad response.
const SyntheticProgress = 42

// Request types accepted by the upstream service.
const (
	RequestTypeTextToModel  = "text_to_model"
	RequestTypeImageToModel = "image_to_model"
)
