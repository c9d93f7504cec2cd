package commands_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/company"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// memoryStore is an in-memory roster and assignment store with the same atomic
// conditional insert the database adapters provide.
type memoryStore struct {
	mu          sync.Mutex
	companies   map[string]*company.Company
	assignments map[string]*assignment.Assignment
	versions    map[string]int

	// beforeCreate runs inside the lock before the busy check; tests use it to
	// simulate a competing request committing first.
	beforeCreate func(s *memoryStore, a *assignment.Assignment)
}

func newMemoryStore(companies ...*company.Company) *memoryStore {
	s := &memoryStore{
		companies:   map[string]*company.Company{},
		assignments: map[string]*assignment.Assignment{},
		versions:    map[string]int{},
	}
	for _, c := range companies {
		s.companies[c.ID()] = c
	}
	return s
}

func (s *memoryStore) Add(_ context.Context, c *company.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID()] = c
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*company.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("companyId", id)
	}
	return c, nil
}

func (s *memoryStore) CreateIfCourierFree(_ context.Context, a *assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeCreate != nil {
		s.beforeCreate(s, a)
	}
	if s.riderBusyLocked(a.RiderNumber()) {
		return ports.ErrCourierIsBusy
	}
	s.assignments[a.ID().String()] = a
	return nil
}

func (s *memoryStore) riderBusyLocked(number string) bool {
	for _, existing := range s.assignments {
		if existing.RiderNumber() == number && existing.IsActive() {
			return true
		}
	}
	return false
}

func (s *memoryStore) QueryActive(_ context.Context, companyID string) ([]*assignment.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*assignment.Assignment
	for _, a := range s.assignments {
		if a.CompanyID() == companyID && a.IsActive() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memoryStore) GetAssignment(id kernel.UUID) (*assignment.Assignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id.String()]
	return a, ok
}

func (s *memoryStore) ActiveFor(number string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.assignments {
		if a.RiderNumber() == number && a.IsActive() {
			n++
		}
	}
	return n
}

func (s *memoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assignments)
}

func (s *memoryStore) put(a *assignment.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID().String()] = a
	s.versions[a.ID().String()] = a.Version()
}

type memoryAssignmentRepo struct{ *memoryStore }

func (r memoryAssignmentRepo) Get(_ context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	a, ok := r.GetAssignment(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("deliveryId", id.String())
	}
	return withVersion(a, a.Version())
}

func (r memoryAssignmentRepo) Update(_ context.Context, a *assignment.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := a.ID().String()
	if r.versions[key] != a.Version() {
		return errs.NewVersionIsInvalidErrorWithCause("version")
	}
	stored, err := withVersion(a, a.Version()+1)
	if err != nil {
		return err
	}
	r.assignments[key] = stored
	r.versions[key] = stored.Version()
	return nil
}

// withVersion copies a as it would be reloaded from storage after an update.
func withVersion(a *assignment.Assignment, version int) (*assignment.Assignment, error) {
	var dropoff *kernel.Location
	if d, ok := a.Dropoff(); ok {
		dropoff = &d
	}
	return assignment.RestoreAssignment(assignment.RestoreParams{
		NewAssignmentParams: assignment.NewAssignmentParams{
			ID:                a.ID(),
			CompanyID:         a.CompanyID(),
			Pickup:            a.Pickup(),
			Dropoff:           dropoff,
			Description:       a.Description(),
			RiderNumber:       a.RiderNumber(),
			RiderLocation:     a.RiderLocation(),
			DistanceKm:        a.DistanceKm(),
			EstimatedDuration: a.EstimatedDuration(),
		},
		Status:     a.Status(),
		CreatedAt:  a.CreatedAt(),
		AssignedAt: a.AssignedAt(),
		UpdatedAt:  a.UpdatedAt(),
		Version:    version,
	})
}

func (r memoryAssignmentRepo) ListAssignedBefore(_ context.Context, before time.Time, limit int) ([]*assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*assignment.Assignment
	for _, a := range r.assignments {
		if a.Status() == assignment.Assigned && a.AssignedAt().Before(before) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt().Before(out[j].AssignedAt()) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memoryUoW hands out repositories over the shared store; transactions are no-ops
// because every store operation is already atomic.
type memoryUoW struct {
	store *memoryStore
}

func (u memoryUoW) Begin(context.Context) error    { return nil }
func (u memoryUoW) Commit(context.Context) error   { return nil }
func (u memoryUoW) Rollback(context.Context) error { return nil }

func (u memoryUoW) CompanyRepository() ports.CompanyRepository {
	return u.store
}

func (u memoryUoW) AssignmentRepository() ports.AssignmentRepository {
	return memoryAssignmentRepo{u.store}
}

type memoryUoWFactory struct{ store *memoryStore }

func (f memoryUoWFactory) Create() commands.UoW { return memoryUoW(f) }

type memoryAssignmentUoWFactory struct{ store *memoryStore }

func (f memoryAssignmentUoWFactory) Create() commands.AssignmentUoW { return memoryUoW(f) }

// mapResolver resolves riders from a fixed table and falls back to a simulated point.
type mapResolver struct {
	mu        sync.Mutex
	locations map[string]kernel.Location
	fallback  kernel.Location
	calls     []string
}

func (r *mapResolver) Resolve(_ context.Context, number string) kernel.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, number)
	if loc, ok := r.locations[number]; ok {
		return loc
	}
	return r.fallback
}

func (r *mapResolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.calls...)
	sort.Strings(out)
	return out
}
