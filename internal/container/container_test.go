package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellescalera/user-management/config"
	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/internal/infrastructure/memory"
	"github.com/daniellescalera/user-management/internal/infrastructure/notify"
	"github.com/daniellescalera/user-management/pkg/helpers"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MAIL_SEND_ENABLED", "false")
	cfg, err := config.Parse()
	require.NoError(t, err)
	return cfg
}

func TestNew_MemoryDriver(t *testing.T) {
	cfg := memoryConfig(t)
	c, err := New(context.Background(), cfg, helpers.NewNopLogger(), WithMetrics(application.NewMetrics()))
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &memory.UserRepository{}, c.Users)
	assert.IsType(t, &notify.LogNotifier{}, c.Service.Notifier)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Service.Index)
	assert.Nil(t, c.Service.Avatars)
	assert.Equal(t, cfg.MaxLoginAttempts, c.Service.MaxLoginAttempts)
	require.NotNil(t, c.Analytics)
}

func TestNew_ElasticsearchConfigured(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.ElasticsearchAddrs = []string{"http://127.0.0.1:9200"}

	c, err := New(context.Background(), cfg, helpers.NewNopLogger(), WithMetrics(application.NewMetrics()))
	require.NoError(t, err)
	defer c.Close()
	assert.NotNil(t, c.Service.Index)
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []int
	c := &Container{}
	c.onClose(func() { order = append(order, 1) })
	c.onClose(func() { order = append(order, 2) })
	c.Close()
	c.Close()
	assert.Equal(t, []int{2, 1}, order)
}

func TestBranding(t *testing.T) {
	cfg := &config.Config{AppName: "users", CompanyName: "Acme", SupportURL: "https://acme.test/help"}
	b := Branding(cfg)
	assert.Equal(t, "users", b.AppName)
	assert.Equal(t, "Acme", b.CompanyName)
	assert.Equal(t, "https://acme.test/help", b.SupportURL)
}
