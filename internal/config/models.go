package config

// ClassifierConfig selects the text classification provider
type ClassifierConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	MaxTextSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	MaxTextSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	MaxTextSize int
}

// ONNXConfig represents the configuration for the local ONNX models
type ONNXConfig struct {
	BodyBundle     string
	SenderBundle   string
	SubjectBundle  string
	SequenceLength int
	MaxTextSize    int
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress string
	MaxBatchSize  int
	CORS          CORSConfig
}

// CORSConfig represents the cross-origin configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// GatewayConfig represents the SMTP gateway configuration
type GatewayConfig struct {
	Enabled       bool
	ListenAddress string
	RelayAddress  string
	RelayPort     int
	RelayEnabled  bool
	ScoreHeader   string
	BandHeader    string
	FlagsHeader   string
}

// GetClassifier returns the classification capability configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider: c.GetString("classifier.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		MaxTextSize: c.GetInt("openai.max_text_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		MaxTextSize: c.GetInt("gemini.max_text_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		MaxTextSize: c.GetInt("bedrock.max_text_size"),
	}
}

// GetONNX returns the local model configuration
func (c *Config) GetONNX() ONNXConfig {
	return ONNXConfig{
		BodyBundle:     c.GetString("onnx.body_bundle"),
		SenderBundle:   c.GetString("onnx.sender_bundle"),
		SubjectBundle:  c.GetString("onnx.subject_bundle"),
		SequenceLength: c.GetInt("onnx.sequence_length"),
		MaxTextSize:    c.GetInt("onnx.max_text_size"),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		MaxBatchSize:  c.GetInt("server.max_batch_size"),
		CORS: CORSConfig{
			AllowedOrigins:   c.GetStringSlice("server.cors.allowed_origins"),
			AllowedMethods:   c.GetStringSlice("server.cors.allowed_methods"),
			AllowedHeaders:   c.GetStringSlice("server.cors.allowed_headers"),
			AllowCredentials: c.GetBool("server.cors.allow_credentials"),
			MaxAge:           c.GetInt("server.cors.max_age"),
		},
	}
}

// GetGateway returns the SMTP gateway configuration
func (c *Config) GetGateway() GatewayConfig {
	return GatewayConfig{
		Enabled:       c.GetBool("gateway.enabled"),
		ListenAddress: c.GetString("gateway.listen_address"),
		RelayAddress:  c.GetString("gateway.relay_address"),
		RelayPort:     c.GetInt("gateway.relay_port"),
		RelayEnabled:  c.GetBool("gateway.relay_enabled"),
		ScoreHeader:   c.GetString("gateway.headers.score"),
		BandHeader:    c.GetString("gateway.headers.band"),
		FlagsHeader:   c.GetString("gateway.headers.flags"),
	}
}
