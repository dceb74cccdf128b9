package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const keyCacheSize = 64

var (
	errKeyFetch   = errors.New("key set fetch failed")
	errUnknownKey = errors.New("no public key for kid")
)

// KeySet resolves provider signing keys by key id from a published JWKS document.
type KeySet struct {
	url    string
	client *resty.Client
	cache  *expirable.LRU[string, any]
}

func NewKeySet(url string, timeout, ttl time.Duration) *KeySet {
	ks := &KeySet{
		url: url,
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
	if ttl > 0 {
		ks.cache = expirable.NewLRU[string, any](keyCacheSize, nil, ttl)
	}
	return ks
}

func (k *KeySet) Key(ctx context.Context, kid string) (any, error) {
	if k.cache != nil {
		if key, ok := k.cache.Get(kid); ok {
			return key, nil
		}
	}

	set, err := k.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if k.cache != nil {
		for _, jwk := range set.Keys {
			if jwk.KeyID != "" && jwk.Valid() && jwk.IsPublic() {
				k.cache.Add(jwk.KeyID, jwk.Key)
			}
		}
	}

	for _, jwk := range set.Key(kid) {
		if jwk.Valid() && jwk.IsPublic() {
			return jwk.Key, nil
		}
	}
	return nil, fmt.Errorf("%w %q", errUnknownKey, kid)
}

func (k *KeySet) fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	resp, err := k.client.R().SetContext(ctx).Get(k.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errKeyFetch, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", errKeyFetch, resp.StatusCode())
	}

	var set jose.JSONWebKeySet
	if err := json.Unmarshal(resp.Body(), &set); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", errKeyFetch, err)
	}
	return &set, nil
}
