package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()
	got := timeouts.Current()
	want := timeouts.Config{
		Ping:   timeouts.DefaultPing,
		Short:  timeouts.DefaultShort,
		Medium: timeouts.DefaultMedium,
		Long:   timeouts.DefaultLong,
	}
	if got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	timeouts.Reset()
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})

	if timeouts.Short() != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", timeouts.Short())
	}
	if timeouts.Medium() != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want default", timeouts.Medium())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	timeouts.Reset()
	defer timeouts.Reset()

	t.Setenv("SYMPHONY_TIMEOUT_PING", "750ms")
	t.Setenv("SYMPHONY_TIMEOUT_LONG", "not-a-duration")
	t.Setenv("SYMPHONY_TIMEOUT_MEDIUM", "-3s")

	if n := timeouts.ConfigureFromEnv(); n != 1 {
		t.Errorf("ConfigureFromEnv() = %d, want 1", n)
	}
	if timeouts.Ping() != 750*time.Millisecond {
		t.Errorf("Ping() = %v, want 750ms", timeouts.Ping())
	}
	if timeouts.Long() != timeouts.DefaultLong {
		t.Errorf("Long() = %v, want default", timeouts.Long())
	}
	if timeouts.Medium() != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want default", timeouts.Medium())
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
