package cache

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"arbscan/internal/model"
)

var redisAddr string

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("could not start redis container: %s", err)
	}
	defer func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			log.Fatalf("could not stop redis container: %s", err)
		}
	}()

	host, err := redisContainer.Host(ctx)
	if err != nil {
		log.Fatalf("could not get container host: %s", err)
	}
	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		log.Fatalf("could not get mapped port: %s", err)
	}
	redisAddr = host + ":" + port.Port()

	code := m.Run()

	os.Exit(code)
}

func TestRedisCache_SetAndGetLatestPrice(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(redisAddr, "", 0, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	price := model.TokenPrice{
		Token:     "WETH",
		Exchange:  "uniswap_v3",
		Price:     decimal.RequireFromString("3412.53"),
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, c.SetLatestPrice(ctx, price))

	got, err := c.GetLatestPrice(ctx, "WETH", "uniswap_v3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, price.Token, got.Token)
	assert.Equal(t, price.Exchange, got.Exchange)
	assert.True(t, got.Price.Equal(price.Price))
}

func TestRedisCache_MissReturnsNil(t *testing.T) {
	c, err := NewRedisCache(redisAddr, "", 0, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.GetLatestPrice(context.Background(), "DOGE", "nowhere")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_EntriesExpire(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(redisAddr, "", 0, 100*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	price := model.TokenPrice{
		Token:     "LINK",
		Exchange:  "sushiswap",
		Price:     decimal.RequireFromString("22.48"),
		Timestamp: time.Now(),
	}
	require.NoError(t, c.SetLatestPrice(ctx, price))

	time.Sleep(200 * time.Millisecond)

	got, err := c.GetLatestPrice(ctx, "LINK", "sushiswap")
	require.NoError(t, err)
	assert.Nil(t, got)
}
