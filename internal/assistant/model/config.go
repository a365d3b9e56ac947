package model

// ================ Config ================
type TextModelConfig struct {
	Model       string  `envconfig:"TEXT_MODEL" default:"gemini-1.5-pro-latest"`
	MaxTokens   int     `envconfig:"TEXT_MAX_TOKENS" default:"2048"`
	Temperature float32 `envconfig:"TEXT_TEMPERATURE" default:"0.4"`
}

type VisionModelConfig struct {
	Model       string  `envconfig:"VISION_MODEL" default:"gemini-1.5-flash"`
	MaxTokens   int     `envconfig:"VISION_MAX_TOKENS" default:"2048"`
	Temperature float32 `envconfig:"VISION_TEMPERATURE" default:"0.4"`
}

type StorageConfig struct {
	// Profile scopes the durable keys so sessions are never shared across
	// browser profiles.
	Profile string `envconfig:"STORAGE_PROFILE" default:"default"`
	// TTL extends the durable keys on every write; "0" keeps them forever.
	TTL string `envconfig:"STORAGE_TTL" default:"0"`
}
