package file

import (
	"time"

	"github.com/klartext/klartext/internal/core/ports/driven"
)

// Recognised configuration keys.
const (
	KeyChunkMaxWords       = "pipeline.chunk_max_words"
	KeyWorkers             = "pipeline.workers"
	KeyMaxAttempts         = "pipeline.max_attempts"
	KeyPolicyVersion       = "pipeline.policy_version"
	KeyComplexityThreshold = "pipeline.complexity_threshold"

	KeyCacheBackend = "cache.backend"
	KeyCacheTTL     = "cache.ttl_hours"
	KeyCacheDir     = "cache.dir"

	KeyLocalBaseURL  = "provider.local.base_url"
	KeyLocalModel    = "provider.local.model"
	KeyRemoteAPIKey  = "provider.remote.api_key"
	KeyRemoteBaseURL = "provider.remote.base_url"
	KeyRemoteModel   = "provider.remote.model"
	KeyCallTimeout   = "provider.timeout_seconds"

	KeySimilarityEnabled   = "verify.similarity_enabled"
	KeySimilarityWarnFloor = "verify.similarity_warn_floor"
	KeySimilarityHardFloor = "verify.similarity_hard_floor"
	KeyDenylist            = "verify.denylist"
	KeyEmbeddingBaseURL    = "verify.embedding.base_url"
	KeyEmbeddingModel      = "verify.embedding.model"

	KeyGlossaryPath = "glossary.path"

	KeyServerAddr      = "server.addr"
	KeyServerRateLimit = "server.rate_limit_per_minute"
	KeyRequestDeadline = "server.request_deadline_seconds"

	KeyTTSBaseURL = "tts.base_url"
	KeyTTSVoice   = "tts.voice"
)

// Settings is the typed configuration surface of the pipeline.
// Zero values mean "use the component default".
type Settings struct {
	ChunkMaxWords       int
	Workers             int
	MaxAttempts         int
	PolicyVersion       int
	ComplexityThreshold float64

	CacheBackend string // "sqlite" (default) or "memory"
	CacheTTL     time.Duration
	CacheDir     string

	LocalBaseURL  string
	LocalModel    string
	RemoteAPIKey  string
	RemoteBaseURL string
	RemoteModel   string
	CallTimeout   time.Duration

	SimilarityEnabled   bool
	SimilarityWarnFloor float64
	SimilarityHardFloor float64
	Denylist            []string
	EmbeddingBaseURL    string
	EmbeddingModel      string

	GlossaryPath string

	ServerAddr      string
	RateLimit       int
	RequestDeadline time.Duration

	TTSBaseURL string
	TTSVoice   string
}

// LoadSettings reads the typed settings out of a config store.
func LoadSettings(store driven.ConfigStore) Settings {
	return Settings{
		ChunkMaxWords:       store.GetInt(KeyChunkMaxWords),
		Workers:             store.GetInt(KeyWorkers),
		MaxAttempts:         store.GetInt(KeyMaxAttempts),
		PolicyVersion:       store.GetInt(KeyPolicyVersion),
		ComplexityThreshold: store.GetFloat(KeyComplexityThreshold),

		CacheBackend: store.GetString(KeyCacheBackend),
		CacheTTL:     time.Duration(store.GetInt(KeyCacheTTL)) * time.Hour,
		CacheDir:     store.GetString(KeyCacheDir),

		LocalBaseURL:  store.GetString(KeyLocalBaseURL),
		LocalModel:    store.GetString(KeyLocalModel),
		RemoteAPIKey:  store.GetString(KeyRemoteAPIKey),
		RemoteBaseURL: store.GetString(KeyRemoteBaseURL),
		RemoteModel:   store.GetString(KeyRemoteModel),
		CallTimeout:   time.Duration(store.GetInt(KeyCallTimeout)) * time.Second,

		SimilarityEnabled:   store.GetBool(KeySimilarityEnabled),
		SimilarityWarnFloor: store.GetFloat(KeySimilarityWarnFloor),
		SimilarityHardFloor: store.GetFloat(KeySimilarityHardFloor),
		Denylist:            store.GetStringSlice(KeyDenylist),
		EmbeddingBaseURL:    store.GetString(KeyEmbeddingBaseURL),
		EmbeddingModel:      store.GetString(KeyEmbeddingModel),

		GlossaryPath: store.GetString(KeyGlossaryPath),

		ServerAddr:      store.GetString(KeyServerAddr),
		RateLimit:       store.GetInt(KeyServerRateLimit),
		RequestDeadline: time.Duration(store.GetInt(KeyRequestDeadline)) * time.Second,

		TTSBaseURL: store.GetString(KeyTTSBaseURL),
		TTSVoice:   store.GetString(KeyTTSVoice),
	}
}
