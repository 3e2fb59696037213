// Package controller implements the board service: the single entry point
// the presentation layer calls to register employees, move them between
// zones and reorganize the board. Every committed change is persisted and
// then announced to the registered refreshers.
package controller

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/gartstein/staffboard/internal/board/assignment"
	e "github.com/gartstein/staffboard/internal/board/errors"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/gartstein/staffboard/internal/board/policy"
	"github.com/gartstein/staffboard/internal/board/registry"
	"github.com/gartstein/staffboard/internal/board/reorganizer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway persists full board snapshots.
type Gateway interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
}

// Refresher is told which views changed after each committed mutation.
type Refresher interface {
	Refresh(states []models.ViewState)
}

// Recorder observes command outcomes.
type Recorder interface {
	ObserveAssignment(changed bool, err error)
	ObserveReorganize(report models.ReorganizeReport)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAssignment(bool, error)              {}
func (nopRecorder) ObserveReorganize(models.ReorganizeReport) {}

// Option configures a BoardService.
type Option func(*BoardService)

// WithRefreshers adds refreshers notified after every committed change.
func WithRefreshers(r ...Refresher) Option {
	return func(s *BoardService) {
		s.refreshers = append(s.refreshers, r...)
	}
}

// WithRecorder sets the command outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *BoardService) {
		s.recorder = r
	}
}

// WithClock sets the clock used to stamp and validate employees.
func WithClock(c registry.Clock) Option {
	return func(s *BoardService) {
		s.clock = c
	}
}

// WithRand sets the random source of auto-reorganize.
func WithRand(r reorganizer.Rand) Option {
	return func(s *BoardService) {
		s.rand = r
	}
}

// BoardService owns the registry and the assignment partition. Commands are
// serialised by a single mutex, so each one runs mutate, persist and notify
// to completion before the next starts.
type BoardService struct {
	mu          sync.Mutex
	policy      *policy.Policy
	registry    *registry.Registry
	store       *assignment.Store
	reorganizer *reorganizer.Reorganizer
	gateway     Gateway
	refreshers  []Refresher
	recorder    Recorder
	clock       registry.Clock
	rand        reorganizer.Rand
	logger      *zap.Logger
}

// NewBoardService constructs a BoardService over an empty board. Call Load
// to restore persisted state.
func NewBoardService(p *policy.Policy, gateway Gateway, logger *zap.Logger, opts ...Option) *BoardService {
	s := &BoardService{
		policy:   p,
		gateway:  gateway,
		recorder: nopRecorder{},
		logger:   logger.Named("board_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.registry = registry.New(s.clock)
	s.store = assignment.New(p, s.registry)
	s.reorganizer = reorganizer.New(p, s.rand)
	return s
}

// Load replaces the in-memory board with the persisted snapshot. Data that
// breaks a board invariant is repaired, and the repaired board is written
// back. Refreshers are told about every view once loading succeeds.
func (s *BoardService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.gateway.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	dropped := s.registry.Restore(snap.Employees)
	notes := s.store.Restore(*snap)
	for _, note := range notes {
		s.logger.Warn("Repaired persisted board", zap.String("repair", note))
	}
	if err := s.store.Verify(); err != nil {
		return fmt.Errorf("restored board is inconsistent: %w", err)
	}

	s.logger.Info("Board loaded",
		zap.Int("employees", s.registry.Len()),
		zap.Int("unassigned", len(s.store.Unassigned())),
		zap.Int("dropped_records", dropped),
	)

	if dropped > 0 || len(notes) > 0 {
		return s.commit(ctx, s.allViews())
	}
	s.notify(s.allViews())
	return nil
}

// CreateEmployee registers a new employee in the unassigned pool. If the
// board cannot be persisted the employee stays registered, and it is
// returned along with the error.
func (s *BoardService) CreateEmployee(ctx context.Context, in models.NewEmployee) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, err := s.registry.Create(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Enroll(emp.ID); err != nil {
		return nil, fmt.Errorf("failed to enroll employee: %w", err)
	}
	s.logger.Info("Employee created",
		zap.String("employee_id", emp.ID.String()),
		zap.String("role", string(emp.Role)),
	)

	if err := s.commit(ctx, []models.View{models.UnassignedView}); err != nil {
		return clone(emp), err
	}
	return clone(emp), nil
}

// FindEmployee returns a copy of the employee with the given id.
func (s *BoardService) FindEmployee(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.registry.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", e.ErrUnknownEmployee, id)
	}
	return clone(emp), nil
}

// Employees returns copies of every employee in creation order.
func (s *BoardService) Employees(_ context.Context) []models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.registry.All()
	out := make([]models.Employee, 0, len(all))
	for _, emp := range all {
		out = append(out, *clone(emp))
	}
	return out
}

// Assign seats the employee in zone, moving it out of any zone it held.
func (s *BoardService) Assign(ctx context.Context, id uuid.UUID, zone models.ZoneID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	views, err := s.store.Assign(id, zone)
	s.recorder.ObserveAssignment(views != nil, err)
	if err != nil {
		s.logger.Info("Assignment rejected",
			zap.String("employee_id", id.String()),
			zap.String("zone", string(zone)),
			zap.Error(err),
		)
		return err
	}
	if views == nil {
		return nil
	}
	return s.commit(ctx, views)
}

// Unassign returns the employee from zone to the unassigned pool. Calling it
// for an employee that is not in zone changes nothing.
func (s *BoardService) Unassign(ctx context.Context, id uuid.UUID, zone models.ZoneID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	views, err := s.store.Unassign(id, zone)
	if err != nil {
		return err
	}
	if views == nil {
		return nil
	}
	return s.commit(ctx, views)
}

// AutoReorganize empties every zone and reseats the roster at random,
// respecting capacity and eligibility. Each placement is committed on its own.
func (s *BoardService) AutoReorganize(ctx context.Context) (models.ReorganizeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.reorganizer.Reorganize(&boardTx{ctx: ctx, s: s})
	if err != nil {
		s.logger.Error("Auto-reorganize aborted", zap.Error(err))
		return report, err
	}
	s.recorder.ObserveReorganize(report)
	s.logger.Info("Auto-reorganize finished",
		zap.Int("placed", len(report.Placed)),
		zap.Int("unplaced", len(report.Unplaced)),
	)
	return report, nil
}

// IsEligible reports whether role may occupy zone.
func (s *BoardService) IsEligible(role models.Role, zone models.ZoneID) bool {
	return s.policy.IsEligible(role, zone)
}

// ZoneOccupancy returns how many employees sit in zone.
func (s *BoardService) ZoneOccupancy(zone models.ZoneID) (int, error) {
	if !s.policy.Knows(zone) {
		return 0, fmt.Errorf("%w: %q", e.ErrUnknownZone, zone)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Occupancy(zone), nil
}

// Zones summarises every zone in display order.
func (s *BoardService) Zones(_ context.Context) []models.ZoneSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	zones := s.policy.Zones()
	out := make([]models.ZoneSummary, 0, len(zones))
	for _, zone := range zones {
		allowed, _ := s.policy.EligibilityOf(zone)
		out = append(out, models.ZoneSummary{
			Zone:      zone,
			Capacity:  s.policy.CapacityOf(zone),
			Occupants: s.store.Occupants(zone),
			Allowed:   allowed,
		})
	}
	return out
}

// Snapshot copies the full board state.
func (s *BoardService) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Unassigned returns the ids of the unassigned pool.
func (s *BoardService) Unassigned() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Unassigned()
}

// commit persists the board and notifies refreshers about views. Callers
// hold mu.
func (s *BoardService) commit(ctx context.Context, views []models.View) error {
	snap := s.store.Snapshot()
	if err := s.gateway.SaveSnapshot(ctx, &snap); err != nil {
		s.logger.Error("Failed to persist board", zap.Error(err))
		return fmt.Errorf("failed to persist board: %w", err)
	}

	s.notify(views)
	return nil
}

func (s *BoardService) notify(views []models.View) {
	states := s.viewStates(views)
	for _, r := range s.refreshers {
		r.Refresh(states)
	}
}

func (s *BoardService) viewStates(views []models.View) []models.ViewState {
	states := make([]models.ViewState, 0, len(views))
	for _, v := range views {
		if v == models.UnassignedView {
			states = append(states, models.ViewState{View: v, Members: s.store.Unassigned()})
			continue
		}
		zone := models.ZoneID(v)
		states = append(states, models.ViewState{
			View:     v,
			Members:  s.store.Occupants(zone),
			Capacity: s.policy.CapacityOf(zone),
		})
	}
	return states
}

func (s *BoardService) allViews() []models.View {
	views := []models.View{models.UnassignedView}
	for _, zone := range s.policy.Zones() {
		views = append(views, models.ZoneView(zone))
	}
	return views
}

// boardTx exposes the locked service to the reorganizer. Every assignment it
// makes is committed before the next is computed.
type boardTx struct {
	ctx context.Context
	s   *BoardService
}

func (b *boardTx) VacateAll() error {
	views := b.s.store.VacateAll()
	if len(views) == 0 {
		return nil
	}
	return b.s.commit(b.ctx, views)
}

func (b *boardTx) Unassigned() []uuid.UUID {
	return b.s.store.Unassigned()
}

func (b *boardTx) RoleOf(id uuid.UUID) (models.Role, bool) {
	emp, ok := b.s.registry.Find(id)
	if !ok {
		return "", false
	}
	return emp.Role, true
}

func (b *boardTx) Occupancy(zone models.ZoneID) int {
	return b.s.store.Occupancy(zone)
}

func (b *boardTx) Assign(id uuid.UUID, zone models.ZoneID) error {
	views, err := b.s.store.Assign(id, zone)
	if err != nil {
		return err
	}
	if views == nil {
		return nil
	}
	return b.s.commit(b.ctx, views)
}

func clone(emp *models.Employee) *models.Employee {
	cp := *emp
	cp.Experiences = slices.Clone(emp.Experiences)
	if emp.CurrentZone != nil {
		cp.CurrentZone = emp.CurrentZone.Ptr()
	}
	return &cp
}
