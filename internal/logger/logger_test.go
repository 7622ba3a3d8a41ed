package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONWithServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Service: "cartd", Env: "test", Level: "info", Output: &buf})

	log.WithField("product_id", 3).Info("added")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cartd", line["service"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, "added", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, float64(3), line["product_id"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Service: "cartd", Level: "error", Output: &buf})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, logrus.ErrorLevel, parseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, parseLevel("nonsense"))
}
