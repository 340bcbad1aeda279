package cache

import (
	"fmt"
	"strings"
)

// Keyer derives cache keys. Every component goes through a Keyer so that a
// deployment can namespace all keys at once with [NewScopedKeyer].
type Keyer interface {
	// RenderKey addresses one rendered image.
	RenderKey(request any, opts RenderKeyOpts) string
	// ResponseKey addresses the duplicate-response marker of a user.
	ResponseKey(userID, questionID string) string
}

// RenderKeyOpts are the render inputs besides the request itself.
type RenderKeyOpts struct {
	Kind   string `json:"kind"`
	Params string `json:"params,omitempty"` // hash of the layout table
	Glitch bool   `json:"glitch,omitempty"`
	Seed   uint64 `json:"seed,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey hashes the JSON form of request together with opts, so any
// change to text, numbers or layout produces a new key.
func (DefaultKeyer) RenderKey(request any, opts RenderKeyOpts) string {
	return hashKey("render:"+opts.Kind, request, opts)
}

func (DefaultKeyer) ResponseKey(userID, questionID string) string {
	return fmt.Sprintf("respond:%s:%s", questionID, userID)
}

// ScopedKeyer prepends a namespace to every key of an inner Keyer, for
// example to keep staging and production apart on one Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil. An
// empty prefix returns inner unchanged; a prefix without a trailing colon
// gets one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) RenderKey(request any, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(request, opts)
}

func (k *ScopedKeyer) ResponseKey(userID, questionID string) string {
	return k.prefix + k.inner.ResponseKey(userID, questionID)
}
