package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	"staffhub/backend/pkg/calendar"
	pkgerrors "staffhub/backend/pkg/errors"
)

// ── 测试夹具 ──

type testMocks struct {
	users         *mockUserRepo
	attendances   *mockAttendanceRepo
	patterns      *mockPatternRepo
	requests      *mockRequestRepo
	swaps         *mockSwapRepo
	notifications *mockNotificationRepo
}

func newTestMocks() (*repository.Repository, *testMocks) {
	m := &testMocks{
		users:         newMockUserRepo(),
		attendances:   newMockAttendanceRepo(),
		patterns:      newMockPatternRepo(),
		requests:      newMockRequestRepo(),
		notifications: newMockNotificationRepo(),
	}
	m.swaps = newMockSwapRepo(m.attendances)
	return &repository.Repository{
		User:              m.users,
		Attendance:        m.attendances,
		RecurringPattern:  m.patterns,
		AttendanceRequest: m.requests,
		SwapRequest:       m.swaps,
		Notification:      m.notifications,
	}, m
}

func seedUser(m *testMocks, id, name, role string) *model.User {
	u := &model.User{UserID: id, Name: name, Email: name + "@staffhub.dev", Role: role}
	m.users.users[id] = u
	return u
}

func mustDate(s string) time.Time {
	d, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Name
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	if limit > 0 {
		end := offset + limit
		if offset > len(result) {
			offset = len(result)
		}
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, total, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock AttendanceRepository ──

func attKey(userID string, date time.Time) string {
	return userID + "|" + calendar.FormatDate(date)
}

type mockAttendanceRepo struct {
	entries map[string]*model.Attendance
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{entries: make(map[string]*model.Attendance)}
}

func (m *mockAttendanceRepo) Get(_ context.Context, userID string, date time.Time) (*model.Attendance, error) {
	if a, ok := m.entries[attKey(userID, date)]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, userID string, date time.Time, status model.AttendanceStatus, prov model.Provenance) error {
	key := attKey(userID, date)
	if existing, ok := m.entries[key]; ok {
		if existing.Provenance.Outranks(prov) {
			return pkgerrors.ErrPrecedenceConflict
		}
		existing.Status = status
		existing.Provenance = prov
		existing.UpdatedAt = time.Now()
		return nil
	}
	m.entries[key] = &model.Attendance{
		AttendanceID: fmt.Sprintf("att-%d", len(m.entries)+1),
		UserID:       userID,
		Date:         date,
		Status:       status,
		Provenance:   prov,
	}
	return nil
}

func (m *mockAttendanceRepo) sorted() []model.Attendance {
	var result []model.Attendance
	for _, a := range m.entries {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].UserID < result[j].UserID
	})
	return result
}

func (m *mockAttendanceRepo) ListPeriod(_ context.Context, from, to time.Time) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.sorted() {
		if !a.Date.Before(from) && !a.Date.After(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListUserPeriod(_ context.Context, userID string, from, to time.Time) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, a := range m.sorted() {
		if a.UserID == userID && !a.Date.Before(from) && !a.Date.After(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListDates(_ context.Context, dates []time.Time) ([]model.Attendance, error) {
	want := make(map[string]bool, len(dates))
	for _, d := range dates {
		want[calendar.FormatDate(d)] = true
	}
	var result []model.Attendance
	for _, a := range m.sorted() {
		if want[calendar.FormatDate(a.Date)] {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) DeletePeriod(_ context.Context, from, to time.Time) (int64, error) {
	var n int64
	for key, a := range m.entries {
		if !a.Date.Before(from) && !a.Date.After(to) {
			delete(m.entries, key)
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(m.entries))
	m.entries = make(map[string]*model.Attendance)
	return n, nil
}

// ── Mock RecurringPatternRepository ──

type mockPatternRepo struct {
	patterns []*model.RecurringPattern // 按创建顺序
}

func newMockPatternRepo() *mockPatternRepo {
	return &mockPatternRepo{}
}

func (m *mockPatternRepo) Create(_ context.Context, p *model.RecurringPattern) error {
	if p.PatternID == "" {
		p.PatternID = fmt.Sprintf("pat-%d", len(m.patterns)+1)
	}
	p.CreatedAt = time.Now()
	m.patterns = append(m.patterns, p)
	return nil
}

func (m *mockPatternRepo) GetByID(_ context.Context, id string) (*model.RecurringPattern, error) {
	for _, p := range m.patterns {
		if p.PatternID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPatternRepo) List(_ context.Context, userID string) ([]model.RecurringPattern, error) {
	var result []model.RecurringPattern
	for i := len(m.patterns) - 1; i >= 0; i-- {
		p := m.patterns[i]
		if userID == "" || p.UserID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPatternRepo) ListActiveIntersecting(_ context.Context, from, to time.Time) ([]model.RecurringPattern, error) {
	var result []model.RecurringPattern
	for _, p := range m.patterns {
		if !p.IsActive {
			continue
		}
		if p.StartDate != nil && p.StartDate.After(to) {
			continue
		}
		if p.EndDate != nil && p.EndDate.Before(from) {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPatternRepo) Update(_ context.Context, p *model.RecurringPattern) error {
	for i, existing := range m.patterns {
		if existing.PatternID == p.PatternID {
			m.patterns[i] = p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockPatternRepo) Delete(_ context.Context, id string) error {
	for i, p := range m.patterns {
		if p.PatternID == id {
			m.patterns = append(m.patterns[:i], m.patterns[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── Mock AttendanceRequestRepository ──

type mockRequestRepo struct {
	requests map[string]*model.AttendanceRequest
	nextID   int
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*model.AttendanceRequest)}
}

func (m *mockRequestRepo) Create(_ context.Context, req *model.AttendanceRequest) error {
	if req.RequestID == "" {
		m.nextID++
		req.RequestID = fmt.Sprintf("req-%d", m.nextID)
	}
	req.CreatedAt = time.Now()
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.AttendanceRequest, error) {
	if r, ok := m.requests[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequestRepo) List(_ context.Context, userID string, status model.RequestStatus) ([]model.AttendanceRequest, error) {
	var result []model.AttendanceRequest
	for _, r := range m.requests {
		if userID != "" && r.UserID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RequestID > result[j].RequestID })
	return result, nil
}

func (m *mockRequestRepo) HasPending(_ context.Context, userID string, date time.Time) (bool, error) {
	for _, r := range m.requests {
		if r.UserID == userID && r.Date.Equal(date) && r.Status == model.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRequestRepo) UpdateStatus(_ context.Context, req *model.AttendanceRequest, status model.RequestStatus) error {
	stored, ok := m.requests[req.RequestID]
	if !ok || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = status
	stored.Version++
	req.Status = status
	req.Version = stored.Version
	return nil
}

func (m *mockRequestRepo) Delete(_ context.Context, id string) error {
	delete(m.requests, id)
	return nil
}

// ── Mock SwapRequestRepository ──
//
// Apply 复刻生产实现的事务语义：任一侧台账缺失或偏离快照时整体失败。

type mockSwapRepo struct {
	swaps  map[string]*model.SwapRequest
	atts   *mockAttendanceRepo
	nextID int
}

func newMockSwapRepo(atts *mockAttendanceRepo) *mockSwapRepo {
	return &mockSwapRepo{swaps: make(map[string]*model.SwapRequest), atts: atts}
}

func (m *mockSwapRepo) Create(_ context.Context, req *model.SwapRequest) error {
	if req.SwapRequestID == "" {
		m.nextID++
		req.SwapRequestID = fmt.Sprintf("swap-%d", m.nextID)
	}
	req.CreatedAt = time.Now()
	m.swaps[req.SwapRequestID] = req
	return nil
}

func (m *mockSwapRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	if r, ok := m.swaps[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRepo) List(_ context.Context, userID string, status model.SwapStatus) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, r := range m.swaps {
		if userID != "" && r.RequesterID != userID && r.TargetUserID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SwapRequestID > result[j].SwapRequestID })
	return result, nil
}

func (m *mockSwapRepo) Update(_ context.Context, req *model.SwapRequest) error {
	stored, ok := m.swaps[req.SwapRequestID]
	if !ok || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = req.Status
	stored.TargetApproved = req.TargetApproved
	stored.AdminReviewedBy = req.AdminReviewedBy
	stored.Version++
	req.Version = stored.Version
	return nil
}

func (m *mockSwapRepo) Apply(ctx context.Context, req *model.SwapRequest, adminID string) error {
	stored, ok := m.swaps[req.SwapRequestID]
	if !ok || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}

	// 双边校验：缺失或偏离快照即冲突，不做任何写入
	reqAtt, err := m.atts.Get(ctx, req.RequesterID, req.Date)
	if err != nil || reqAtt.Status != req.RequesterOldStatus {
		return pkgerrors.ErrSwapConflict
	}
	tgtAtt, err := m.atts.Get(ctx, req.TargetUserID, req.Date)
	if err != nil || tgtAtt.Status != req.TargetOldStatus {
		return pkgerrors.ErrSwapConflict
	}

	reqAtt.Status = req.RequesterNewStatus
	reqAtt.Provenance = model.ProvenanceSwap
	tgtAtt.Status = req.TargetNewStatus
	tgtAtt.Provenance = model.ProvenanceSwap

	stored.Status = model.SwapApplied
	stored.AdminReviewedBy = &adminID
	stored.Version++

	req.Status = model.SwapApplied
	req.AdminReviewedBy = &adminID
	req.Version = stored.Version
	return nil
}

func (m *mockSwapRepo) Delete(_ context.Context, id string) error {
	delete(m.swaps, id)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("ntf-%d", len(m.notifications)+1)
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
