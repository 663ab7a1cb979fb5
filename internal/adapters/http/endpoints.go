package http

import (
	"net/url"
	"strings"

	"github.com/bft-labs/streamship/internal/ports"
)

// BrokerEndpoints resolves topic URLs of the form
// <base>/event-types/<topic>/events, used for both consuming and publishing.
type BrokerEndpoints struct {
	base string
}

// NewBrokerEndpoints creates endpoints rooted at serviceURL.
func NewBrokerEndpoints(serviceURL string) BrokerEndpoints {
	return BrokerEndpoints{base: strings.TrimRight(serviceURL, "/")}
}

// ConsumeURL implements ports.Endpoints.
func (e BrokerEndpoints) ConsumeURL(topic string) string {
	return e.eventsURL(topic)
}

// PublishURL implements ports.Endpoints.
func (e BrokerEndpoints) PublishURL(topic string) string {
	return e.eventsURL(topic)
}

func (e BrokerEndpoints) eventsURL(topic string) string {
	return e.base + "/event-types/" + url.PathEscape(topic) + "/events"
}

var _ ports.Endpoints = BrokerEndpoints{}
