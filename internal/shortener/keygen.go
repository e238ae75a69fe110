package shortener

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	MinKeyLength = 6
	MaxKeyLength = 8

	// DefaultMaxAttempts bounds how many keys are tried before giving up.
	DefaultMaxAttempts = 5
)

// Generator returns a random candidate key.
type Generator func() string

// NewNanoidGenerator returns a generator drawing keys of the given length from
// the URL-safe alphabet A-Za-z0-9_-.
func NewNanoidGenerator(length int) (Generator, error) {
	if length < MinKeyLength || length > MaxKeyLength {
		return nil, fmt.Errorf("key length %d outside [%d, %d]", length, MinKeyLength, MaxKeyLength)
	}

	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("create nanoid generator: %w", err)
	}

	return gen, nil
}

// KeyGenerator allocates collision-free keys by pairing random sampling with
// the repository's insert-if-absent Save. Uniqueness under concurrent load comes
// from the store: two callers drawing the same key cannot both win the insert.
type KeyGenerator struct {
	store       Repository
	generate    Generator
	maxAttempts int
	reserved    map[Key]struct{}
}

// NewKeyGenerator creates a key generator. A non-positive maxAttempts means DefaultMaxAttempts.
func NewKeyGenerator(store Repository, generate Generator, maxAttempts int) *KeyGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &KeyGenerator{
		store:       store,
		generate:    generate,
		maxAttempts: maxAttempts,
		reserved:    make(map[Key]struct{}),
	}
}

// Reserve excludes keys that would shadow fixed routes such as "health" or "docs".
// It must be called before the generator is shared between goroutines.
func (g *KeyGenerator) Reserve(keys ...Key) {
	for _, k := range keys {
		g.reserved[k] = struct{}{}
	}
}

// Generate draws a candidate key that is not reserved. It does not check the store.
func (g *KeyGenerator) Generate() Key {
	for {
		key := Key(g.generate())
		if _, ok := g.reserved[key]; !ok {
			return key
		}
	}
}

// Allocate assigns a fresh key to link and stores it. Keys already taken are
// retried up to the attempt limit, after which ErrKeySpaceExhausted is returned
// and link.Key is left empty.
func (g *KeyGenerator) Allocate(ctx context.Context, link *Link) error {
	for range g.maxAttempts {
		link.Key = g.Generate()

		err := g.store.Save(ctx, link)
		if err == nil {
			return nil
		}

		if !errors.Is(err, ErrKeyExists) {
			link.Key = ""

			return err
		}
	}

	link.Key = ""

	return fmt.Errorf("%w after %d attempts", ErrKeySpaceExhausted, g.maxAttempts)
}
