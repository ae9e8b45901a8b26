package ports

// EmailGateway defines the interface for a surface that accepts emails
// for risk analysis (HTTP API, SMTP content gateway)
type EmailGateway interface {
	// Start starts the gateway service
	Start() error

	// Stop stops the gateway service
	Stop() error
}
