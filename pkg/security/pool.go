package security

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"
)

// Hasher is a one-way password hashing algorithm
type Hasher interface {
	Name() string
	// Handles reports whether the encoded hash was produced by this algorithm
	Handles(encoded string) bool
	GenerateFromPassword(p string) (string, error)
	VerifyPasswd(p, encoded string) (bool, error)
}

var ErrUnknownHash = errors.New("no hasher can handle this hash")

// HashPool limits how many hash computations run at once. Hashing is slow on
// purpose and a burst of logins shouldn't starve every other request of CPU.
//
// New hashes always use the primary hasher, verification picks whichever of the
// registered hashers recognizes the stored value.
type HashPool struct {
	primary Hasher
	all     []Hasher
	sem     *semaphore.Weighted
}

func NewHashPool(workers int, primary Hasher, fallbacks ...Hasher) *HashPool {
	if workers <= 0 {
		workers = 1
	}

	return &HashPool{
		primary: primary,
		all:     append([]Hasher{primary}, fallbacks...),
		sem:     semaphore.NewWeighted(int64(workers)),
	}
}

func (p *HashPool) Hash(ctx context.Context, plain string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	return p.primary.GenerateFromPassword(plain)
}

func (p *HashPool) Verify(ctx context.Context, plain, encoded string) (bool, error) {
	h := p.hasherFor(encoded)
	if h == nil {
		return false, ErrUnknownHash
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)

	return h.VerifyPasswd(plain, encoded)
}

func (p *HashPool) hasherFor(encoded string) Hasher {
	for _, h := range p.all {
		if h.Handles(encoded) {
			return h
		}
	}

	return nil
}
