package azuredi

import (
	"net/http"
	"time"
)

type Config struct {
	url string

	token string

	interval time.Duration

	client *http.Client
}

type Option func(*Config)

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.interval = interval
	}
}
