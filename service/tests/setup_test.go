package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	cachemocks "github.com/zlnvch/notekeep/cache/mocks"
	"github.com/zlnvch/notekeep/service"
	storemocks "github.com/zlnvch/notekeep/store/mocks"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func setupService(t *testing.T) (*service.Service, *storemocks.MockStore, *cachemocks.MockCache, *fakeClock) {
	mockStore := new(storemocks.MockStore)
	mockCache := new(cachemocks.MockCache)

	svc, err := service.NewService(
		mockStore,
		mockCache,
		[]byte("secret"),
		service.DefaultSessionTTL,
		bcrypt.MinCost,
		nil,
	)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.Clock = clock.Now

	return svc, mockStore, mockCache, clock
}
