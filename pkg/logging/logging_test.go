package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapbridge/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newTo(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("pkg", "flow.Controller").Debug("transition")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "transition", entry["msg"])
	assert.Equal(t, "flow.Controller", entry["pkg"])
}

func TestNew_Defaults(t *testing.T) {
	logger, err := newTo(config.LogConfig{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNew_Invalid(t *testing.T) {
	_, err := newTo(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = newTo(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
