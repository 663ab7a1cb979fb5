package ports

// Endpoints resolves broker URLs for a topic.
type Endpoints interface {
	// ConsumeURL returns the streaming GET endpoint for topic.
	ConsumeURL(topic string) string

	// PublishURL returns the POST endpoint for topic.
	PublishURL(topic string) string
}
