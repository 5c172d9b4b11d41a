package config_test

import (
	"testing"
	"time"

	"github.com/reshetovitsme/goofish-monitor/internal/shared/config"
	"github.com/stretchr/testify/require"
)

func TestParseAllowedUsers(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []int64
	}{
		{"empty", "", []int64{}},
		{"single", "123456", []int64{123456}},
		{"multiple", "123,456,789", []int64{123, 456, 789}},
		{"with spaces", " 123 , 456 ", []int64{123, 456}},
		{"garbage skipped", "123,abc,456", []int64{123, 456}},
		{"only garbage", "abc,def", []int64{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, config.ParseAllowedUsers(tc.input))
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := &config.Config{RequestTimeout: 30, NotifyDelayMs: 500}

	require.Equal(t, 30*time.Second, cfg.Timeout())
	require.Equal(t, 500*time.Millisecond, cfg.NotifyDelay())
}
