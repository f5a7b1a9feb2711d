package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{port: 8080, maxQuestions: 20}, false},
		{"port too low", Config{port: 0, maxQuestions: 20}, true},
		{"port too high", Config{port: 70000, maxQuestions: 20}, true},
		{"cert without key", Config{port: 8080, maxQuestions: 20, tlsCert: "cert.pem"}, true},
		{"key without cert", Config{port: 8080, maxQuestions: 20, tlsKey: "key.pem"}, true},
		{"cert and key", Config{port: 8080, maxQuestions: 20, tlsCert: "cert.pem", tlsKey: "key.pem"}, false},
		{"zero question budget", Config{port: 8080, maxQuestions: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	assert.Equal(t, "http", (&Config{}).scheme())
	assert.Equal(t, "https", (&Config{tlsCert: "cert.pem", tlsKey: "key.pem"}).scheme())
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 20, cfg.maxQuestions)
	assert.Zero(t, cfg.sessionTimeout)
	assert.False(t, cfg.metrics)
}
