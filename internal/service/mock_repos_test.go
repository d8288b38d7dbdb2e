package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
	pkgerrors "hr-lms/backend/pkg/errors"
)

var errStoreDown = errors.New("store unavailable")

// ── Mock JobRoleRepository ──

type mockJobRoleRepo struct {
	roles map[string]*model.JobRole
}

func newMockJobRoleRepo() *mockJobRoleRepo {
	return &mockJobRoleRepo{roles: make(map[string]*model.JobRole)}
}

func (m *mockJobRoleRepo) Create(_ context.Context, role *model.JobRole) error {
	for _, r := range m.roles {
		if r.Name == role.Name {
			return pkgerrors.ErrUniqueViolation
		}
	}
	if role.RoleID == "" {
		role.RoleID = uuid.NewString()
	}
	if role.Version == 0 {
		role.Version = 1
	}
	m.roles[role.RoleID] = role
	return nil
}

func (m *mockJobRoleRepo) GetByID(_ context.Context, id string) (*model.JobRole, error) {
	if r, ok := m.roles[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRoleRepo) List(_ context.Context, includeInactive bool, offset, limit int) ([]model.JobRole, int64, error) {
	var result []model.JobRole
	for _, r := range m.roles {
		if includeInactive || r.IsActive {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockJobRoleRepo) Update(_ context.Context, role *model.JobRole) error {
	cur, ok := m.roles[role.RoleID]
	if !ok || cur.Version != role.Version {
		return pkgerrors.ErrOptimisticLock
	}
	role.Version++
	cp := *role
	m.roles[role.RoleID] = &cp
	return nil
}

// ── Mock TrainingRepository ──

type mockTrainingRepo struct {
	trainings map[string]*model.Training
}

func newMockTrainingRepo() *mockTrainingRepo {
	return &mockTrainingRepo{trainings: make(map[string]*model.Training)}
}

func (m *mockTrainingRepo) Create(_ context.Context, t *model.Training) error {
	if t.TrainingID == "" {
		t.TrainingID = uuid.NewString()
	}
	m.trainings[t.TrainingID] = t
	return nil
}

func (m *mockTrainingRepo) GetByID(_ context.Context, id string) (*model.Training, error) {
	if t, ok := m.trainings[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTrainingRepo) List(_ context.Context, keyword string, includeInactive bool, offset, limit int) ([]model.Training, int64, error) {
	var result []model.Training
	for _, t := range m.trainings {
		if !includeInactive && !t.IsActive {
			continue
		}
		if keyword != "" && !strings.Contains(t.Title, keyword) {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockTrainingRepo) Update(_ context.Context, t *model.Training) error {
	cp := *t
	m.trainings[t.TrainingID] = &cp
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.JobRoleAssignment
	roles       *mockJobRoleRepo
	listErr     error // 注入 ListActive* 失败
}

func newMockAssignmentRepo(roles *mockJobRoleRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.JobRoleAssignment), roles: roles}
}

// withRole 模拟 Preload("JobRole")
func (m *mockAssignmentRepo) withRole(a *model.JobRoleAssignment) model.JobRoleAssignment {
	cp := *a
	cp.JobRole = m.roles.roles[a.JobRoleID]
	return cp
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.JobRoleAssignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cp := *a
	cp.JobRole = nil
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.JobRoleAssignment, error) {
	if a, ok := m.assignments[id]; ok {
		cp := m.withRole(a)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.JobRoleAssignment) error {
	if _, ok := m.assignments[a.AssignmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *a
	cp.JobRole = nil
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter, offset, limit int) ([]model.JobRoleAssignment, int64, error) {
	var result []model.JobRoleAssignment
	for _, a := range m.sorted() {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.JobRoleID != "" && a.JobRoleID != filter.JobRoleID {
			continue
		}
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		result = append(result, m.withRole(a))
	}
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockAssignmentRepo) ListActiveByUser(_ context.Context, userID string, asOf *time.Time) ([]model.JobRoleAssignment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.JobRoleAssignment
	for _, a := range m.sorted() {
		if a.UserID != userID || !a.IsActive {
			continue
		}
		if asOf != nil && !a.CoversDate(*asOf) {
			continue
		}
		result = append(result, m.withRole(a))
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListActiveByRole(_ context.Context, roleID string) ([]model.JobRoleAssignment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.JobRoleAssignment
	for _, a := range m.sorted() {
		if a.JobRoleID == roleID && a.IsActive {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListActive(_ context.Context) ([]model.JobRoleAssignment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.JobRoleAssignment
	for _, a := range m.sorted() {
		if a.IsActive {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) sorted() []*model.JobRoleAssignment {
	list := make([]*model.JobRoleAssignment, 0, len(m.assignments))
	for _, a := range m.assignments {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AssignmentID < list[j].AssignmentID })
	return list
}

// ── Mock RequirementRepository ──

type mockRequirementRepo struct {
	reqs      map[string]*model.TrainingRequirement
	roles     *mockJobRoleRepo
	trainings *mockTrainingRepo
	listErr   error
}

func newMockRequirementRepo(roles *mockJobRoleRepo, trainings *mockTrainingRepo) *mockRequirementRepo {
	return &mockRequirementRepo{reqs: make(map[string]*model.TrainingRequirement), roles: roles, trainings: trainings}
}

// withRefs 模拟 Preload("JobRole").Preload("Training")
func (m *mockRequirementRepo) withRefs(r *model.TrainingRequirement) model.TrainingRequirement {
	cp := *r
	cp.JobRole = m.roles.roles[r.JobRoleID]
	cp.Training = m.trainings.trainings[r.TrainingID]
	return cp
}

func (m *mockRequirementRepo) Create(_ context.Context, req *model.TrainingRequirement) error {
	for _, r := range m.reqs {
		if r.JobRoleID == req.JobRoleID && r.TrainingID == req.TrainingID {
			return pkgerrors.ErrUniqueViolation
		}
	}
	if req.RequirementID == "" {
		req.RequirementID = uuid.NewString()
	}
	cp := *req
	cp.JobRole, cp.Training = nil, nil
	m.reqs[req.RequirementID] = &cp
	return nil
}

func (m *mockRequirementRepo) GetByID(_ context.Context, id string) (*model.TrainingRequirement, error) {
	if r, ok := m.reqs[id]; ok {
		cp := m.withRefs(r)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequirementRepo) Update(_ context.Context, req *model.TrainingRequirement) error {
	cp := *req
	cp.JobRole, cp.Training = nil, nil
	m.reqs[req.RequirementID] = &cp
	return nil
}

func (m *mockRequirementRepo) List(_ context.Context, filter repository.RequirementFilter, offset, limit int) ([]model.TrainingRequirement, int64, error) {
	var result []model.TrainingRequirement
	for _, r := range m.reqs {
		if filter.JobRoleID != "" && r.JobRoleID != filter.JobRoleID {
			continue
		}
		if filter.TrainingID != "" && r.TrainingID != filter.TrainingID {
			continue
		}
		if filter.ActiveOnly && !r.IsActive {
			continue
		}
		result = append(result, m.withRefs(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RequirementID < result[j].RequirementID })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockRequirementRepo) ListActiveByRoles(_ context.Context, roleIDs []string) ([]model.TrainingRequirement, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	wanted := make(map[string]bool, len(roleIDs))
	for _, id := range roleIDs {
		wanted[id] = true
	}
	var result []model.TrainingRequirement
	for _, r := range m.reqs {
		if wanted[r.JobRoleID] && r.IsActive {
			result = append(result, m.withRefs(r))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ri, rj := nameOf(result[i].JobRole), nameOf(result[j].JobRole)
		if ri != rj {
			return ri < rj
		}
		ti, tj := titleOf(result[i].Training), titleOf(result[j].Training)
		if ti != tj {
			return ti < tj
		}
		return result[i].RequirementID < result[j].RequirementID
	})
	return result, nil
}

func nameOf(r *model.JobRole) string {
	if r == nil {
		return "\uffff"
	}
	return r.Name
}

func titleOf(t *model.Training) string {
	if t == nil {
		return "\uffff"
	}
	return t.Title
}

// ── Mock CompletionRepository ──

type mockCompletionRepo struct {
	enrollments []*model.Enrollment
	err         error
}

func newMockCompletionRepo() *mockCompletionRepo {
	return &mockCompletionRepo{}
}

func (m *mockCompletionRepo) Create(_ context.Context, e *model.Enrollment) error {
	if e.EnrollmentID == "" {
		e.EnrollmentID = uuid.NewString()
	}
	m.enrollments = append(m.enrollments, e)
	return nil
}

func (m *mockCompletionRepo) List(_ context.Context, userID, trainingID string, offset, limit int) ([]model.Enrollment, int64, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if (userID == "" || e.UserID == userID) && (trainingID == "" || e.TrainingID == trainingID) {
			result = append(result, *e)
		}
	}
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockCompletionRepo) ExistsCompleted(_ context.Context, userID, trainingID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, e := range m.enrollments {
		if e.UserID == userID && e.TrainingID == trainingID && e.MarksCompletion() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCompletionRepo) CompletedTrainingIDs(_ context.Context, userID string, trainingIDs []string) (map[string]bool, error) {
	if m.err != nil {
		return nil, m.err
	}
	wanted := make(map[string]bool, len(trainingIDs))
	for _, id := range trainingIDs {
		wanted[id] = true
	}
	done := make(map[string]bool)
	for _, e := range m.enrollments {
		if e.UserID == userID && wanted[e.TrainingID] && e.MarksCompletion() {
			done[e.TrainingID] = true
		}
	}
	return done, nil
}

// ── Mock NeedRepository ──

// mockNeedRepo 与部分唯一索引语义一致：同一 (user, training) 至多一条 is_open 记录
type mockNeedRepo struct {
	mu          sync.Mutex
	needs       []*model.TrainingNeed
	completions *mockCompletionRepo
	trainings   *mockTrainingRepo

	// createErr 返回非空时模拟该条创建失败
	createErr func(need *model.TrainingNeed) error
	// beforeCreate 在唯一性检查前执行（持锁），用于模拟并发写入者抢先
	beforeCreate func(need *model.TrainingNeed)
	createCalls  int
}

func newMockNeedRepo(completions *mockCompletionRepo, trainings *mockTrainingRepo) *mockNeedRepo {
	return &mockNeedRepo{completions: completions, trainings: trainings}
}

func (m *mockNeedRepo) Create(_ context.Context, need *model.TrainingNeed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++

	if m.createErr != nil {
		if err := m.createErr(need); err != nil {
			return err
		}
	}
	if m.beforeCreate != nil {
		m.beforeCreate(need)
	}
	if need.IsOpen && m.openLocked(need.UserID, need.TrainingID) != nil {
		return pkgerrors.ErrUniqueViolation
	}
	if need.NeedID == "" {
		need.NeedID = uuid.NewString()
	}
	now := time.Now()
	need.CreatedAt, need.UpdatedAt = now, now
	cp := *need
	m.needs = append(m.needs, &cp)
	return nil
}

// insert 直接写入（测试数据准备），不做唯一性检查
func (m *mockNeedRepo) insert(need *model.TrainingNeed) *model.TrainingNeed {
	m.mu.Lock()
	defer m.mu.Unlock()
	if need.NeedID == "" {
		need.NeedID = uuid.NewString()
	}
	m.needs = append(m.needs, need)
	return need
}

func (m *mockNeedRepo) openLocked(userID, trainingID string) *model.TrainingNeed {
	for _, n := range m.needs {
		if n.IsOpen && n.UserID == userID && n.TrainingID == trainingID {
			return n
		}
	}
	return nil
}

func (m *mockNeedRepo) GetByID(_ context.Context, id string) (*model.TrainingNeed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.needs {
		if n.NeedID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNeedRepo) ExistsOpen(_ context.Context, userID, trainingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openLocked(userID, trainingID) != nil, nil
}

func (m *mockNeedRepo) OpenTrainingIDsBySource(_ context.Context, userID, source string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	open := make(map[string]bool)
	for _, n := range m.needs {
		if n.IsOpen && n.UserID == userID && n.Source == source {
			open[n.TrainingID] = true
		}
	}
	return open, nil
}

func (m *mockNeedRepo) List(ctx context.Context, filter repository.NeedFilter, offset, limit int) ([]model.TrainingNeed, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TrainingNeed
	for _, n := range m.needs {
		if filter.UserID != "" && n.UserID != filter.UserID {
			continue
		}
		if filter.TrainingID != "" && n.TrainingID != filter.TrainingID {
			continue
		}
		if filter.Source != "" && n.Source != filter.Source {
			continue
		}
		if filter.IsOpen != nil && n.IsOpen != *filter.IsOpen {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(n.Note, filter.Keyword) {
			continue
		}
		if filter.HideCompleted {
			if done, _ := m.completions.ExistsCompleted(ctx, n.UserID, n.TrainingID); done {
				continue
			}
		}
		cp := *n
		if m.trainings != nil {
			cp.Training = m.trainings.trainings[n.TrainingID]
		}
		result = append(result, cp)
	}
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockNeedRepo) SetOpen(_ context.Context, need *model.TrainingNeed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.needs {
		if n.NeedID != need.NeedID {
			continue
		}
		if need.IsOpen {
			if other := m.openLocked(need.UserID, need.TrainingID); other != nil && other.NeedID != need.NeedID {
				return pkgerrors.ErrUniqueViolation
			}
		}
		n.IsOpen = need.IsOpen
		n.Status = need.Status
		n.ResolvedAt = need.ResolvedAt
		n.UpdatedBy = need.UpdatedBy
		return nil
	}
	return gorm.ErrRecordNotFound
}

// openFor 返回 (user, training) 的全部未关闭记录
func (m *mockNeedRepo) openFor(userID, trainingID string) []model.TrainingNeed {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TrainingNeed
	for _, n := range m.needs {
		if n.IsOpen && n.UserID == userID && n.TrainingID == trainingID {
			result = append(result, *n)
		}
	}
	return result
}

func (m *mockNeedRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.needs)
}

// ── Mock SystemStateRepository ──

type mockSystemStateRepo struct {
	state   model.SystemState
	getErr  error
	markErr error
	marks   int
}

func (m *mockSystemStateRepo) Get(_ context.Context) (*model.SystemState, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	cp := m.state
	return &cp, nil
}

func (m *mockSystemStateRepo) MarkNeedsBackfilled(_ context.Context, at time.Time) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.marks++
	m.state.NeedsBackfilledAt = &at
	return nil
}

// ── Mock RebuildReportStore ──

type mockReportStore struct {
	payload []byte
	ttl     time.Duration
}

func (m *mockReportStore) SaveRebuildReport(_ context.Context, payload []byte, ttl time.Duration) error {
	m.payload = payload
	m.ttl = ttl
	return nil
}

func (m *mockReportStore) LastRebuildReport(_ context.Context) ([]byte, error) {
	return m.payload, nil
}

func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

// ── 测试环境 ──

type testEnv struct {
	roles        *mockJobRoleRepo
	trainings    *mockTrainingRepo
	assignments  *mockAssignmentRepo
	requirements *mockRequirementRepo
	completions  *mockCompletionRepo
	needs        *mockNeedRepo
	state        *mockSystemStateRepo
	repo         *repository.Repository
}

func newTestEnv() *testEnv {
	e := &testEnv{
		roles:       newMockJobRoleRepo(),
		trainings:   newMockTrainingRepo(),
		completions: newMockCompletionRepo(),
		state:       &mockSystemStateRepo{state: model.SystemState{Singleton: true}},
	}
	e.assignments = newMockAssignmentRepo(e.roles)
	e.requirements = newMockRequirementRepo(e.roles, e.trainings)
	e.needs = newMockNeedRepo(e.completions, e.trainings)
	e.repo = &repository.Repository{
		JobRole:     e.roles,
		Training:    e.trainings,
		Assignment:  e.assignments,
		Requirement: e.requirements,
		Completion:  e.completions,
		Need:        e.needs,
		SystemState: e.state,
	}
	return e
}

func (e *testEnv) addRole(id, name string) *model.JobRole {
	r := &model.JobRole{RoleID: id, Name: name, IsActive: true}
	r.Version = 1
	e.roles.roles[id] = r
	return r
}

func (e *testEnv) addTraining(id, title string) *model.Training {
	t := &model.Training{TrainingID: id, Title: title, IsActive: true}
	e.trainings.trainings[id] = t
	return t
}

func (e *testEnv) assign(id, userID, roleID string) *model.JobRoleAssignment {
	a := &model.JobRoleAssignment{
		AssignmentID:  id,
		UserID:        userID,
		JobRoleID:     roleID,
		EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
	e.assignments.assignments[id] = a
	return a
}

func (e *testEnv) require(id, roleID, trainingID string) *model.TrainingRequirement {
	r := &model.TrainingRequirement{
		RequirementID:   id,
		JobRoleID:       roleID,
		TrainingID:      trainingID,
		RequirementType: model.RequirementTypeRequired,
		IsActive:        true,
	}
	e.requirements.reqs[id] = r
	return r
}

func (e *testEnv) complete(userID, trainingID string) {
	e.completions.enrollments = append(e.completions.enrollments, &model.Enrollment{
		EnrollmentID: uuid.NewString(),
		UserID:       userID,
		TrainingID:   trainingID,
		Status:       model.EnrollmentStatusCompleted,
	})
}
