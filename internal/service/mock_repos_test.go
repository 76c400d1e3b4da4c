package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/DiaaElsadek/uniStream22/internal/model"
)

// ── Mock UserRepository ──
//
// 带互斥锁并强制唯一约束（学号/邮箱/令牌），用于模拟数据库对并发注册的裁决

type mockUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.AppUser

	tokenQueries int // GetByToken 调用计数（门禁空令牌短路测试用）
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[uint]*model.AppUser)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.AppUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.AcademicID == user.AcademicID || u.Email == user.Email || u.UserToken == user.UserToken {
			return gorm.ErrDuplicatedKey
		}
	}

	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.AppUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByToken(_ context.Context, userToken string) (*model.AppUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenQueries++
	for _, u := range m.users {
		if u.UserToken == userToken {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.AppUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByAcademicID(_ context.Context, academicID string) (*model.AppUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.AcademicID == academicID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateToken(_ context.Context, id uint, newToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.UserToken = newToken
	return nil
}

// ── Mock NewsRepository ──

type mockNewsRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]*model.News

	listErr error // 非 nil 时 List 返回该错误（镜像回退测试用）
}

func newMockNewsRepo() *mockNewsRepo {
	return &mockNewsRepo{nextID: 1, items: make(map[uint]*model.News)}
}

func (m *mockNewsRepo) Create(_ context.Context, news *model.News) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	news.ID = m.nextID
	m.nextID++
	news.CreatedAt = time.Now()
	cp := *news
	m.items[news.ID] = &cp
	return nil
}

func (m *mockNewsRepo) GetByID(_ context.Context, id uint) (*model.News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.items[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNewsRepo) List(_ context.Context) ([]model.News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.News
	// 周次降序，同周内 id 降序
	for id := m.nextID; id >= 1; id-- {
		if n, ok := m.items[id]; ok {
			result = append(result, *n)
		}
	}
	sortNewsWeekDesc(result)
	return result, nil
}

func (m *mockNewsRepo) Delete(_ context.Context, id uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

// sortNewsWeekDesc 稳定按周次降序（保持 id 降序的输入顺序）
func sortNewsWeekDesc(items []model.News) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Week > items[j-1].Week; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	items    []model.ScheduleItem
	subjects []model.Subject
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{
		subjects: []model.Subject{
			{ID: 1, Name: "هندسة البرمجيات"},
			{ID: 2, Name: "شبكات الحاسب"},
		},
	}
}

func (m *mockScheduleRepo) ListItems(_ context.Context) ([]model.ScheduleItem, error) {
	return append([]model.ScheduleItem(nil), m.items...), nil
}

func (m *mockScheduleRepo) ListSubjects(_ context.Context) ([]model.Subject, error) {
	return append([]model.Subject(nil), m.subjects...), nil
}

// ── Mock 缓存协作方 ──

type mockMailer struct {
	mu   sync.Mutex
	sent []string // 发送过的验证码
}

func (m *mockMailer) SendOTP(_, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, code)
	return nil
}

type mockOTPCache struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMockOTPCache() *mockOTPCache {
	return &mockOTPCache{codes: make(map[string]string)}
}

func (m *mockOTPCache) SetOTP(_ context.Context, email, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

func (m *mockOTPCache) TakeOTP(_ context.Context, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code := m.codes[email]
	delete(m.codes, email)
	return code, nil
}

type mockMirror struct {
	mu       sync.Mutex
	profiles map[uint][]byte
	news     map[uint][]byte
}

func newMockMirror() *mockMirror {
	return &mockMirror{profiles: make(map[uint][]byte), news: make(map[uint][]byte)}
}

func (m *mockMirror) MirrorWriteProfile(_ context.Context, userID uint, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = payload
	return nil
}

func (m *mockMirror) MirrorReadProfile(_ context.Context, userID uint) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID], nil
}

func (m *mockMirror) MirrorWriteNews(_ context.Context, userID uint, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.news[userID] = payload
	return nil
}

func (m *mockMirror) MirrorReadNews(_ context.Context, userID uint) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.news[userID], nil
}

func (m *mockMirror) MirrorClear(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
	delete(m.news, userID)
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
