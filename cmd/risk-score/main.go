package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mailrisk/analyzer/internal/capability"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/factory"
	"github.com/mailrisk/analyzer/internal/logging"
	"github.com/mailrisk/analyzer/internal/mailparse"
	"go.uber.org/zap"
)

var (
	// Classification provider flags
	provider    = flag.String("provider", "openai", "Classification provider (openai, gemini, bedrock, onnx)")
	maxTokens   = flag.Int("max-tokens", 200, "Maximum tokens for model response")
	temperature = flag.Float64("temperature", 0.0, "Temperature for model generation")
	maxTextSize = flag.Int("max-text-size", 4096, "Maximum text size to send to the classifier")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4o-mini", "OpenAI model name")

	// Local ONNX model flags
	onnxBodyBundle    = flag.String("onnx-body-bundle", "", "Directory of the body model bundle")
	onnxSenderBundle  = flag.String("onnx-sender-bundle", "", "Directory of the sender model bundle")
	onnxSubjectBundle = flag.String("onnx-subject-bundle", "", "Directory of the subject model bundle")

	// Pipeline flags
	trustedDomains  = flag.String("trusted-domains", "", "Comma-separated list of trusted sender domains")
	detectorTimeout = flag.Duration("detector-timeout", 10*time.Second, "Per-detector time budget")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.NewFromFile(*configFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Build the pipeline
	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	cacheFactory := factory.NewCacheFactory(cfg, logger)
	classifierFactory := factory.NewClassifierFactory(cfg, logger, textProcessor, cacheFactory)

	registry := capability.NewRegistry()
	set, err := classifierFactory.CreateClassifierSet(registry)
	if err != nil {
		logger.Fatal("Failed to create classifier set", zap.Error(err))
	}

	// The local provider loads its model bundles in the background
	if cfg.GetClassifier().Provider == "onnx" {
		waitForCapabilities(registry, logger)
	}

	domains := cfg.GetStringSlice("pipeline.trusted_domains")
	scanner := factory.NewScannerFactory(cfg, logger).CreateScanner()

	detectors := []core.Detector{
		core.NewContentDetector(set.Body, logger),
		core.NewSubjectDetector(set.Subject, logger),
		core.NewSenderDetector(set.Sender, domains, logger),
		core.NewURLDetector(logger),
		core.NewAttachmentDetector(scanner, logger),
	}

	timeout, err := cfg.GetDuration("pipeline.detector_timeout")
	if err != nil {
		logger.Fatal("Invalid detector timeout", zap.Error(err))
	}
	margin, err := cfg.GetDuration("pipeline.deadline_margin")
	if err != nil {
		logger.Fatal("Invalid deadline margin", zap.Error(err))
	}

	orchestrator := core.NewOrchestrator(detectors, timeout, margin, logger)
	service := core.NewAnalysisService(orchestrator, core.NewAggregator(logger), logger)

	// Read email from file or stdin
	var email *core.Email
	if *inputFile != "" {
		logger.Info("Reading email from file", zap.String("file", *inputFile))
		email, err = mailparse.ParseFile(*inputFile)
	} else {
		logger.Info("Reading email from stdin")
		email, err = mailparse.Parse(os.Stdin)
	}
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From.Address)
	fmt.Printf("To: %s\n", strings.Join(email.To, ", "))
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))
	fmt.Printf("Attachments: %d\n", len(email.Attachments))
	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Provider: %s\n", cfg.GetClassifier().Provider)

	startTime := time.Now()
	report := service.Analyze(context.Background(), email)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Overall score: %d\n", report.OverallScore)
	fmt.Printf("Risk band: %s\n", report.Band)
	if len(report.Security.Flags) > 0 {
		fmt.Printf("Flags: %s\n", strings.Join(report.Security.Flags, ", "))
	}
	for _, indicator := range report.Security.Indicators {
		fmt.Printf("  - %s\n", indicator)
	}
	fmt.Printf("Processing time: %v\n", duration)

	fmt.Printf("\n=== Report ===\n")
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Fatal("Failed to serialize report", zap.Error(err))
	}
	fmt.Println(string(out))
}

// waitForCapabilities blocks until every capability leaves the
// initializing state, bounded by a fixed startup budget
func waitForCapabilities(registry *capability.Registry, logger *zap.Logger) {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if registry.Ready() {
			return
		}
		settled := true
		for _, state := range registry.Snapshot() {
			if strings.HasPrefix(state, "initializing") {
				settled = false
				break
			}
		}
		if settled {
			// A failed capability surfaces as an unavailable category
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
	logger.Warn("Capabilities still initializing after startup budget")
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("classifier.provider", *provider)
	v.Set("pipeline.detector_timeout", detectorTimeout.String())

	switch *provider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.max_text_size", *maxTextSize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.max_text_size", *maxTextSize)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.max_text_size", *maxTextSize)
	case "onnx":
		v.Set("onnx.body_bundle", *onnxBodyBundle)
		v.Set("onnx.sender_bundle", *onnxSenderBundle)
		v.Set("onnx.subject_bundle", *onnxSubjectBundle)
		v.Set("onnx.max_text_size", *maxTextSize)
	}

	if *trustedDomains != "" {
		domains := strings.Split(*trustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("pipeline.trusted_domains", domains)
	}

	// One-shot runs gain nothing from a score cache
	v.Set("cache.enabled", false)

	return config.NewFromViper(v)
}
