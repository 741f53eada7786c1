// Package session authenticates operators against configured accounts and gates routes on the result.
package session

import (
	"crypto/sha256"
	"crypto/subtle"
	"defectboard/bizerror"
	"encoding/hex"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const TokenExpiration = 24 * time.Hour

// Login attempts per account: a burst of LoginBurst, then one every LoginInterval.
const (
	LoginBurst    = 5
	LoginInterval = time.Minute
)

type Manager struct {
	accounts map[string]string
	tokens   *cache.Cache

	limitersLock sync.Mutex
	limiters     map[string]*rate.Limiter
}

// NewManager accepts account name to hex sha256 secret pairs.
// Account names are case insensitive, the config layer lowercases map keys.
func NewManager(accounts map[string]string) *Manager {
	copied := make(map[string]string, len(accounts))
	for name, secret := range accounts {
		copied[accountName(name)] = secret
	}
	return &Manager{
		accounts: copied,
		tokens:   cache.New(TokenExpiration, 1*time.Minute),
		limiters: map[string]*rate.Limiter{},
	}
}

func (m *Manager) limiter(name string) *rate.Limiter {
	m.limitersLock.Lock()
	defer m.limitersLock.Unlock()
	l, found := m.limiters[name]
	if !found {
		l = rate.NewLimiter(rate.Every(LoginInterval), LoginBurst)
		m.limiters[name] = l
	}
	return l
}

func (m *Manager) resetLimiter(name string) {
	m.limitersLock.Lock()
	defer m.limitersLock.Unlock()
	delete(m.limiters, name)
}

func (m *Manager) Login(name, password string) (*Context, error) {
	name = accountName(name)
	if !m.limiter(name).Allow() {
		logrus.WithField("account", name).Warn("login rate limited")
		return nil, bizerror.ErrTooManyAttempts
	}

	secret, found := m.accounts[name]
	if !found || subtle.ConstantTimeCompare([]byte(secret), []byte(HashSha256(password))) != 1 {
		logrus.WithField("account", name).Info("login rejected")
		return nil, bizerror.ErrUnauthenticated
	}
	m.resetLimiter(name)

	token := newToken()
	c := &Context{Token: token, Identity: Identity{ID: accountID(name), Name: name, Nickname: name}, SigningTime: time.Now()}
	m.tokens.Set(token, c, cache.DefaultExpiration)
	return c, nil
}

func (m *Manager) Logout(token string) {
	if token != "" {
		m.tokens.Delete(token)
	}
}

func (m *Manager) Current(token string) (*Context, error) {
	if token == "" {
		return nil, bizerror.ErrUnauthenticated
	}
	value, found := m.tokens.Get(token)
	if !found {
		return nil, bizerror.ErrUnauthenticated
	}
	c, ok := value.(*Context)
	if !ok {
		return nil, bizerror.ErrUnauthenticated
	}
	return c, nil
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func accountName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func accountID(name string) types.ID {
	h := fnv.New64a()
	h.Write([]byte(name))
	return types.ID(h.Sum64() >> 11)
}
