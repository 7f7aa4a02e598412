package main

import (
	"testing"

	"github.com/scamwatch/sentinel/internal/config"
	"github.com/scamwatch/sentinel/internal/fraud"
	"github.com/stretchr/testify/assert"
)

func TestEngineOptions_DefaultsMatchEngine(t *testing.T) {
	assert.Equal(t, fraud.DefaultOptions(), engineOptions(config.DefaultConfig()))
}

func TestLoadSamples_Embedded(t *testing.T) {
	set, err := loadSamples("")

	assert.NoError(t, err)
	assert.NotEmpty(t, set.Text)
}
