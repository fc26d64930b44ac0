package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/cli/config"
)

func TestSlack_Configure(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		notifier, err := config.NewSlackForTest("", "", "").Configure()
		gt.NoError(t, err)
		gt.Value(t, notifier).Nil()
	})

	t.Run("token without channel", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "", "").Configure()
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("configured", func(t *testing.T) {
		cfg := config.NewSlackForTest("xoxb-test", "#support", "http://127.0.0.1:1/api/")
		gt.Bool(t, cfg.IsConfigured()).True()
		notifier, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, notifier).NotNil()
	})
}

func TestSentry_Configure(t *testing.T) {
	flush, err := config.NewSentryForTest("", "test").Configure("dev")
	gt.NoError(t, err).Required()
	flush()

	_, err = config.NewSentryForTest("not a dsn", "test").Configure("dev")
	gt.Error(t, err)
}
