// Package services – CodeStatsService
//
// This file implements the CodeStatsService, which serves the typing-XP
// views. Both reports go through the cache-aside store with an hour TTL; on
// a miss the Code::Stats API is hit once and the derived view is cached, so
// the upstream sees at most one request per report per hour.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aalmaz/go-site-backend/internal/cache"
	"github.com/aalmaz/go-site-backend/internal/codestats"
)

const (
	codeStatsTTL         = time.Hour
	statsCacheKey        = "codestats:stats"
	topLanguagesCacheKey = "codestats:top-languages"
)

// CodeStatsService implements the cached Code::Stats use-cases.
type CodeStatsService struct {
	// Cache is the cache-aside store backing both reports.
	Cache cache.Store

	// Client talks to the Code::Stats API.
	Client *codestats.Client

	// Colors resolves language display colors.
	Colors *codestats.ColorTable

	// Username is the Code::Stats account the reports describe.
	Username string
}

// NewCodeStatsService constructs a CodeStatsService with default upstream
// endpoints.
func NewCodeStatsService(store cache.Store, username string) *CodeStatsService {
	return &CodeStatsService{
		Cache:    store,
		Client:   &codestats.Client{},
		Colors:   &codestats.ColorTable{},
		Username: username,
	}
}

// Stats returns the condensed profile view, cached for an hour.
func (s *CodeStatsService) Stats(ctx context.Context) (*codestats.Stats, error) {
	return cache.WithCache(ctx, s.Cache, statsCacheKey, codeStatsTTL,
		func(ctx context.Context) (*codestats.Stats, error) {
			profile, err := s.Client.UserProfile(ctx, s.Username)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
			}
			return codestats.StatsFromProfile(profile), nil
		})
}

// TopLanguages returns the top-languages breakdown, cached for an hour.
func (s *CodeStatsService) TopLanguages(ctx context.Context) ([]codestats.LanguageStat, error) {
	return cache.WithCache(ctx, s.Cache, topLanguagesCacheKey, codeStatsTTL,
		func(ctx context.Context) ([]codestats.LanguageStat, error) {
			profile, err := s.Client.UserProfile(ctx, s.Username)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
			}
			langs, err := codestats.TopLanguagesFromProfile(ctx, profile, s.Colors)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
			}
			return langs, nil
		})
}
