package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zlnvch/notekeep/cache"
	"github.com/zlnvch/notekeep/store"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

type Service struct {
	Store      store.NotesStore
	Cache      cache.NotesCache
	JWTSecret  []byte
	SessionTTL time.Duration
	BcryptCost int
	Logger     *zap.Logger
	Clock      func() time.Time

	// compared against when the email is unknown so both login failures cost the same
	dummyHash []byte
}

func NewService(
	store store.NotesStore,
	notesCache cache.NotesCache,
	jwtSecret []byte,
	sessionTTL time.Duration,
	bcryptCost int,
	logger *zap.Logger,
) (*Service, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}
	if notesCache == nil {
		notesCache = cache.NoopCache{}
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, err
	}

	return &Service{
		Store:      store,
		Cache:      notesCache,
		JWTSecret:  jwtSecret,
		SessionTTL: sessionTTL,
		BcryptCost: bcryptCost,
		Logger:     logger,
		Clock:      time.Now,
		dummyHash:  dummyHash,
	}, nil
}

// now is the timestamp stored on records, truncated to the precision the
// wire format carries.
func (s *Service) now() time.Time {
	return s.Clock().UTC().Truncate(time.Millisecond)
}
