package cmd

// Config carries the environment-provided settings for the service.
// Broker and cache settings are optional: an empty AmqpURL, KafkaHost or
// RedisAddr disables the corresponding bridge.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AmqpURL      string
	AmqpExchange string

	KafkaHost  string
	KafkaTopic string

	RedisAddr     string
	RedisPassword string
}
