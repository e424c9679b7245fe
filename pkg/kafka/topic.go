package kafka

// TopicPrefix namespaces every topic the server writes to.
const TopicPrefix = "journalist"

// Topic returns "<prefix>.<aggregate>.<action>", e.g. journalist.review.created.
func Topic(aggregate, action string) string {
	return TopicPrefix + "." + aggregate + "." + action
}
