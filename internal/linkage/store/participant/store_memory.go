package participant

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/sentinel"
)

type txMarker struct{}

// InMemoryStore is a participant store for tests and local dry runs. RunInTx
// restores the previous state when fn fails, so applies are all-or-nothing.
type InMemoryStore struct {
	mu           sync.Mutex
	facts        []models.RawFact
	participants map[models.ParticipantKey]*string
	stats        map[string]models.Statistic
}

// NewInMemoryStore constructs an empty in-memory participant store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		participants: make(map[models.ParticipantKey]*string),
		stats:        make(map[string]models.Statistic),
	}
}

// AddParticipants registers participants without aliases.
func (s *InMemoryStore) AddParticipants(keys ...models.ParticipantKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if _, ok := s.participants[k]; !ok {
			s.participants[k] = nil
		}
	}
}

// RemoveParticipant deletes a participant row.
func (s *InMemoryStore) RemoveParticipant(key models.ParticipantKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, key)
}

// SetFacts replaces the mapping rows.
func (s *InMemoryStore) SetFacts(facts ...models.RawFact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = append([]models.RawFact(nil), facts...)
}

// SetAlias overwrites one stored alias value.
func (s *InMemoryStore) SetAlias(key models.ParticipantKey, alias *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[key] = cloneAlias(alias)
}

// Aliases returns a copy of every stored alias value; "" stands for none.
func (s *InMemoryStore) Aliases() map[models.ParticipantKey]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.ParticipantKey]string, len(s.participants))
	for k, v := range s.participants {
		if v == nil {
			out[k] = ""
			continue
		}
		out[k] = *v
	}
	return out
}

func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	s.mu.Lock()
	participants := make(map[models.ParticipantKey]*string, len(s.participants))
	for k, v := range s.participants {
		participants[k] = cloneAlias(v)
	}
	stats := make(map[string]models.Statistic, len(s.stats))
	for k, v := range s.stats {
		stats[k] = v
	}
	s.mu.Unlock()

	err := fn(context.WithValue(ctx, txMarker{}, true))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Lock()
		s.participants = participants
		s.stats = stats
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *InMemoryStore) FetchFacts(_ context.Context) ([]models.RawFact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RawFact(nil), s.facts...), nil
}

func (s *InMemoryStore) ListParticipantKeys(_ context.Context) ([]models.ParticipantKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]models.ParticipantKey, 0, len(s.participants))
	for k := range s.participants {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

func (s *InMemoryStore) ApplyPlan(ctx context.Context, plan models.Plan) (models.ApplyResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ApplyResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.ApplyResult
	for _, in := range plan.Instructions {
		current, ok := s.participants[in.Key]
		if !ok {
			result.Unmatched++
			continue
		}
		if equalAlias(current, in.Alias) {
			continue
		}
		s.participants[in.Key] = cloneAlias(in.Alias)
		result.Updated++
	}
	return result, nil
}

func (s *InMemoryStore) RefreshStatistics(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, st := range s.stats {
		if st.IsDomain {
			delete(s.stats, name)
		}
	}
	distinct := make(map[string]struct{})
	for k, alias := range s.participants {
		_, domain := k.Parts()
		st := s.stats[domain]
		st.Name, st.IsDomain = domain, true
		st.Count++
		s.stats[domain] = st
		if alias != nil {
			distinct[*alias] = struct{}{}
		}
	}
	s.stats[models.StatMappedParticipantCount] = models.Statistic{
		Name:  models.StatMappedParticipantCount,
		Count: int64(len(s.facts)),
	}
	s.stats[models.StatUniqueParticipantCount] = models.Statistic{
		Name:  models.StatUniqueParticipantCount,
		Count: int64(len(distinct)),
	}
	return nil
}

func (s *InMemoryStore) ListStatistics(_ context.Context) ([]models.Statistic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Statistic, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) FindAlias(_ context.Context, key models.ParticipantKey) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alias, ok := s.participants[key]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", key, sentinel.ErrNotFound)
	}
	return cloneAlias(alias), nil
}

func cloneAlias(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func equalAlias(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
