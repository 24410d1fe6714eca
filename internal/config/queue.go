package config

import "fmt"

// QueueConfig defines the RabbitMQ connection used for publishing vault
// lifecycle events to downstream consumers.
type QueueConfig struct {
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Url       string `mapstructure:"url"`
	QueueName string `mapstructure:"queue-name"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Username == "" {
		return fmt.Errorf("queue username is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("queue password is required")
	}
	if cfg.Url == "" {
		return fmt.Errorf("queue url is required")
	}
	if cfg.QueueName == "" {
		return fmt.Errorf("queue name is required")
	}
	return nil
}
