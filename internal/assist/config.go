package assist

// Config tunes hint generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() Config {
	return Config{MaxTokens: 400, Temperature: 0.3}
}
