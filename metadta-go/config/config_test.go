package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateCatchesBadFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"empty dataset", func(c *Config) { c.Dataset = "" }},
		{"zero dmodel", func(c *Config) { c.DModel = 0 }},
		{"zero nca", func(c *Config) { c.NCA = 0 }},
		{"zero nsa", func(c *Config) { c.NSA = 0 }},
		{"one bin", func(c *Config) { c.NBins = 1 }},
		{"tiny seqlen", func(c *Config) { c.SeqLen = 1 }},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"zero lr", func(c *Config) { c.LR = 0 }},
		{"negative lr", func(c *Config) { c.LR = -1e-4 }},
		{"zero epochs", func(c *Config) { c.NEpochs = 0 }},
		{"zero workers", func(c *Config) { c.NumWorkers = 0 }},
		{"negative patience", func(c *Config) { c.Patience = -1 }},
		{"empty datadir", func(c *Config) { c.DataDir = "" }},
		{"empty logdir", func(c *Config) { c.LogDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
