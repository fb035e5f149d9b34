package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/salon-connect/config"
	"github.com/oksasatya/salon-connect/internal/infrastructure/memory"
	"github.com/oksasatya/salon-connect/pkg/helpers"
)

func TestOpenStoreMemory(t *testing.T) {
	closeFn, err := OpenStore(context.Background(), &config.Config{StoreDriver: DriverMemory}, helpers.NewDiscardLogger(), true)
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &memory.UserRepository{}, GetUserRepo())
	assert.IsType(t, &memory.SalonRepository{}, GetSalonRepo())
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreDriver: "cassandra"}, helpers.NewDiscardLogger(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}

func TestGetEventPublisherUntypedNil(t *testing.T) {
	SetRabbitPub(nil)
	assert.Nil(t, GetEventPublisher())
}
