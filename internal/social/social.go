// Package social resolves external identities for social login.
package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
)

const ProviderKakao = "kakao"

var ErrUnknownProvider = errors.New("unknown social login provider")

type (
	Provider interface {
		Name() string
		Profile(ctx context.Context) (dal.ExternalIdentity, error)
	}

	// Kakao is a stand-in for Kakao Login: it always yields the same profile.
	Kakao struct {
		profile dal.ExternalIdentity
	}

	Registry struct {
		providers map[string]Provider
	}
)

func NewKakao() *Kakao {
	return &Kakao{
		profile: dal.ExternalIdentity{
			Provider: ProviderKakao,
			ID:       "kakao_123456789",
			Username: "카카오러버",
		},
	}
}

func (k *Kakao) Name() string {
	return ProviderKakao
}

func (k *Kakao) Profile(context.Context) (dal.ExternalIdentity, error) {
	return k.profile, nil
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Profile(ctx context.Context, provider string) (dal.ExternalIdentity, error) {
	p, ok := r.providers[provider]
	if !ok {
		return dal.ExternalIdentity{}, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	profile, err := p.Profile(ctx)
	if err != nil {
		return dal.ExternalIdentity{}, fmt.Errorf("fetch %s profile: %w", provider, err)
	}
	return profile, nil
}
