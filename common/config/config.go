package config

import (
	"os"
	"strings"
	"time"

	"github.com/caratlab/jewel-studio/common/env"
)

var SystemName = "Jewel Studio"
var ServerAddress = env.String("SERVER_ADDRESS", "http://localhost:3000")

var ServiceName = env.String("SERVICE_NAME", "jewel-studio")
var InstanceId = env.String("INSTANCE_ID", "")

var DebugEnabled = strings.ToLower(os.Getenv("DEBUG")) == "true"
var DebugSQLEnabled = strings.ToLower(os.Getenv("DEBUG_SQL")) == "true"

// Upstream credentials. A missing key never crashes a handler: the task
// client degrades to synthetic progress and the enhancement pipeline falls
// back to the vision cascade.
var TripoApiKey = os.Getenv("TRIPO_API_KEY")
var OpenAIApiKey = os.Getenv("OPENAI_API_KEY")
var AnthropicApiKey = os.Getenv("ANTHROPIC_API_KEY")

var TripoBaseURL = env.String("TRIPO_BASE_URL", "https://api.tripo3d.ai/v2/openapi")
var OpenAIBaseURL = env.String("OPENAI_BASE_URL", "https://api.openai.com/v1")
var AnthropicBaseURL = env.String("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1")
var AnthropicVersion = "2023-06-01"

// Polling parameters, see the task poller. The ceiling is
// PollMaxAttempts * PollInterval of wall clock.
var PollInterval = time.Duration(env.Int("POLL_INTERVAL", 5)) * time.Second
var PollMaxAttempts = env.Int("POLL_MAX_ATTEMPTS", 120)
var PollTransientRetries = env.Int("POLL_TRANSIENT_RETRIES", 3)
var PollTransientDelay = time.Duration(env.Int("POLL_TRANSIENT_DELAY_MS", 500)) * time.Millisecond

// The upstream sometimes reports success before output URLs are populated.
// OutputWaitRetries bounds how many extra status reads we do before conceding
// to a degraded asset tier. The exact count is not load-bearing.
var OutputWaitRetries = env.Int("OUTPUT_WAIT_RETRIES", 3)

// MaskUpstreamAuthErrors converts upstream 401/403 into a synthetic running
// status instead of surfacing the auth failure to the browser. Intentional:
// it keeps credential state out of client responses and keeps the polling UI
// alive. Can be turned off for debugging misconfigured keys.
var MaskUpstreamAuthErrors = env.Bool("MASK_UPSTREAM_AUTH_ERRORS", true)

// Geometry normalization envelope: after loading, the largest bounding-box
// dimension of a model equals GeometryTargetSize scene units.
var GeometryTargetSize = env.Float64("GEOMETRY_TARGET_SIZE", 5.0)

// Enhancement pipeline retry budget, applied to rate-limit responses only.
var EnhanceMaxRetries = env.Int("ENHANCE_MAX_RETRIES", 3)
var EnhanceRetryBaseDelay = time.Duration(env.Int("ENHANCE_RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond

// Upload limit for the enhancement endpoints.
var UploadMaxBytes = int64(env.Int("UPLOAD_MAX_BYTES", 10*1024*1024))

// Storage of generated/enhanced images. Resolved once at startup; handlers
// receive the provider, they never consult the environment themselves.
var LocalStorageDir = env.String("LOCAL_STORAGE_DIR", "./data/generated")

var CfR2StoreEnabled = env.Bool("CF_R2_STORE_ENABLED", false)
var CfBucketName = os.Getenv("CF_BUCKET_NAME")
var CfAccessKey = os.Getenv("CF_ACCESS_KEY")
var CfSecretKey = os.Getenv("CF_SECRET_KEY")
var CfEndpoint = os.Getenv("CF_ENDPOINT")
var CfPublicUrl = os.Getenv("CF_PUBLIC_URL")

var ProxyURL = os.Getenv("PROXY_URL")

var RelayTimeout = env.Int("RELAY_TIMEOUT", 0) // unit is second

// Background sweeper that reconciles unfinished task records.
var TaskSweepEnabled = env.Bool("TASK_SWEEP_ENABLED", true)
var TaskSweepInterval = time.Duration(env.Int("TASK_SWEEP_INTERVAL", 15)) * time.Second

// Cached task statuses expire after this many seconds.
var TaskCacheTTL = env.Int("TASK_CACHE_TTL", 60)

var ItemsPerPage = 10
