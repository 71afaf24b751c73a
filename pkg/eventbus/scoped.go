package eventbus

import (
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ScopedTopic appends a session scope to a base topic: {baseTopic}.{scope}.
//
// Example:
//   - baseTopic: "tournament.round.resolved.v1"
//   - scope: "3f0c..."
//   - result: "tournament.round.resolved.v1.3f0c..."
//
// NATS consumers can then follow one session, or all of them with
// "tournament.round.resolved.v1.*".
func ScopedTopic(baseTopic, scope string) string {
	if scope == "" {
		return baseTopic
	}
	return fmt.Sprintf("%s.%s", baseTopic, strings.ReplaceAll(scope, ".", "_"))
}

// PublishScoped publishes msg on the scoped form of baseTopic.
func PublishScoped(pub message.Publisher, baseTopic, scope string, msg *message.Message) error {
	if scope == "" {
		return fmt.Errorf("scope cannot be empty for scoped publish")
	}
	return pub.Publish(ScopedTopic(baseTopic, scope), msg)
}
