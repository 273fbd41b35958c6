package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/repository"
	"lead_scoring_backend/platform/apperr"
)

var errStorageDown = errors.New("connection refused")

type fakeRepo struct {
	mu       sync.Mutex
	leads    map[uuid.UUID]domain.Lead
	configs  map[domain.Dimension]domain.DimensionConfig
	scores   map[uuid.UUID]repository.LeadScoring
	history  []repository.HistoryEntry
	opIDs    map[uuid.UUID]struct{}
	failLead map[uuid.UUID]error
	saves    int
}

func newFakeRepo() *fakeRepo {
	r := &fakeRepo{
		leads:    make(map[uuid.UUID]domain.Lead),
		configs:  make(map[domain.Dimension]domain.DimensionConfig),
		scores:   make(map[uuid.UUID]repository.LeadScoring),
		opIDs:    make(map[uuid.UUID]struct{}),
		failLead: make(map[uuid.UUID]error),
	}
	for d, c := range domain.DefaultConfigSet() {
		r.configs[d] = c
	}
	return r
}

func (r *fakeRepo) addLead(lead domain.Lead) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	r.leads[lead.ID] = lead
	return lead.ID
}

func (r *fakeRepo) historyFor(leadID uuid.UUID) []repository.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.HistoryEntry, 0)
	for _, h := range r.history {
		if h.LeadID == leadID {
			out = append(out, h)
		}
	}
	return out
}

func (r *fakeRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *fakeRepo) GetLead(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failLead[id]; ok {
		return domain.Lead{}, err
	}
	lead, ok := r.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found").With("leadId", id.String())
	}
	return lead, nil
}

func (r *fakeRepo) ListLeadIDs(_ context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.leads))
	for id := range r.leads {
		if id.String() > after.String() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *fakeRepo) ListConfigs(_ context.Context) ([]domain.DimensionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.DimensionConfig, 0, len(r.configs))
	for _, c := range r.configs {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeRepo) UpsertConfig(_ context.Context, cfg domain.DimensionConfig) (domain.DimensionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg.UpdatedAt = time.Now()
	r.configs[cfg.Dimension] = cfg
	return cfg, nil
}

func (r *fakeRepo) InsertDefaults(_ context.Context, configs []domain.DimensionConfig) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := 0
	for _, c := range configs {
		if _, ok := r.configs[c.Dimension]; ok {
			continue
		}
		r.configs[c.Dimension] = c
		inserted++
	}
	return inserted, nil
}

func (r *fakeRepo) GetScore(_ context.Context, leadID uuid.UUID) (repository.LeadScoring, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scores[leadID]
	if !ok {
		return repository.LeadScoring{}, apperr.NotFound("lead score not found").With("leadId", leadID.String())
	}
	return s, nil
}

func (r *fakeRepo) SaveScore(_ context.Context, params repository.SaveScoreParams) (repository.LeadScoring, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := params.Score
	current, exists := r.scores[s.LeadID]
	now := time.Now()
	switch {
	case params.ExpectedVersion == 0 && exists:
		return repository.LeadScoring{}, apperr.Conflict("lead score was modified concurrently")
	case params.ExpectedVersion == 0:
		s.ID = uuid.New()
		s.Version = 1
		s.CreatedAt = now
	case !exists || current.Version != params.ExpectedVersion:
		return repository.LeadScoring{}, apperr.Conflict("lead score was modified concurrently")
	default:
		s.Version = current.Version + 1
	}
	s.UpdatedAt = now
	r.scores[s.LeadID] = s
	r.saves++

	if h := params.History; h != nil {
		if _, dup := r.opIDs[h.OperationID]; !dup {
			r.opIDs[h.OperationID] = struct{}{}
			entry := *h
			entry.ID = uuid.New()
			entry.CreatedAt = now
			r.history = append(r.history, entry)
		}
	}
	return s, nil
}

func (r *fakeRepo) ListHistory(_ context.Context, leadID uuid.UUID) ([]repository.HistoryEntry, error) {
	return r.historyFor(leadID), nil
}

func (r *fakeRepo) ListScores(_ context.Context, filter repository.ScoreFilter) ([]repository.LeadScoring, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.LeadScoring, 0, len(r.scores))
	for _, s := range r.scores {
		if filter.Status != "" && s.QualificationStatus != filter.Status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

var _ repository.ScoringRepository = (*fakeRepo)(nil)
