package oracle

const (
	DefaultModel      = "claude-opus-4-6"
	DefaultMaxTokens  = 2048
	DefaultMaxRetries = 2
	Temperature       = 0.1
)

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int64
	MaxRetries int
}

func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:     apiKey,
		Model:      DefaultModel,
		MaxTokens:  DefaultMaxTokens,
		MaxRetries: DefaultMaxRetries,
	}
}
