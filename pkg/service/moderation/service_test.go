/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-12-02 22:50:27
 * @LastEditTime: 2025-12-02 22:50:27
 * @LastEditors: 安知鱼
 */
package moderation

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/xyhcode/tidecms/internal/pkg/auth"
	"github.com/xyhcode/tidecms/internal/pkg/event"
	"github.com/xyhcode/tidecms/pkg/constant"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/domain/repository"
	"github.com/xyhcode/tidecms/pkg/idgen"
	commentsvc "github.com/xyhcode/tidecms/pkg/service/comment"
	"github.com/xyhcode/tidecms/pkg/service/utility"
)

func TestMain(m *testing.M) {
	if err := idgen.InitSqidsEncoderWithSeed("moderation-test-seed"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// --- 测试替身 ---

type fakeCommentRepo struct {
	mu     sync.Mutex
	nextID uint
	store  map[uint]*model.Comment

	// failNextCAS 让下一次条件更新空转，用于模拟并发冲突
	failNextCAS bool
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{store: make(map[uint]*model.Comment)}
}

func (r *fakeCommentRepo) add(postID uint, parentID *uint, status model.Status) *model.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := &model.Comment{
		ID:       r.nextID,
		PostID:   postID,
		ParentID: parentID,
		Author:   model.Author{Kind: model.AuthorGuest, Name: "测试用户"},
		Content:  "测试内容",
		Status:   status,
	}
	r.store[c.ID] = c
	return c
}

func (r *fakeCommentRepo) Create(ctx context.Context, params *repository.CreateCommentParams) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := &model.Comment{
		ID:       r.nextID,
		PostID:   params.PostID,
		ParentID: params.ParentID,
		Author: model.Author{
			Kind:   params.AuthorKind,
			UserID: params.UserID,
			Name:   params.Name,
			Email:  params.Email,
		},
		Content:     params.Content,
		ContentHTML: params.ContentHTML,
		Status:      params.Status,
		IsStaff:     params.IsStaff,
		CreatedAt:   time.Now(),
	}
	r.store[c.ID] = c
	return c, nil
}

func (r *fakeCommentRepo) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok {
		return nil, constant.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) FindManyByIDs(ctx context.Context, ids []uint) ([]*model.Comment, error) {
	var result []*model.Comment
	for _, id := range ids {
		if c, err := r.FindByID(ctx, id); err == nil {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *fakeCommentRepo) FindChildIDs(ctx context.Context, parentID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, c := range r.store {
		if c.ParentID != nil && *c.ParentID == parentID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (r *fakeCommentRepo) DeleteByIDs(ctx context.Context, ids []uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, id := range ids {
		if _, ok := r.store[id]; ok {
			delete(r.store, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) FindApprovedRoots(ctx context.Context, postID uint, page, pageSize int) ([]*model.Comment, int64, error) {
	return nil, 0, nil
}

func (r *fakeCommentRepo) FindApprovedChildren(ctx context.Context, parentIDs []uint) ([]*model.Comment, error) {
	return nil, nil
}

func (r *fakeCommentRepo) FindApprovedChildrenPaginated(ctx context.Context, parentID uint, page, pageSize int) ([]*model.Comment, int64, error) {
	return nil, 0, nil
}

func (r *fakeCommentRepo) FindLatestApproved(ctx context.Context, limit int) ([]*model.Comment, error) {
	return nil, nil
}

func (r *fakeCommentRepo) FindWithConditions(ctx context.Context, params repository.AdminListParams) ([]*model.Comment, int64, error) {
	return nil, 0, nil
}

func (r *fakeCommentRepo) UpdateStatusIf(ctx context.Context, id uint, expect, to model.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextCAS {
		r.failNextCAS = false
		return false, nil
	}
	c, ok := r.store[id]
	if !ok || c.Status != expect {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (r *fakeCommentRepo) UpdateContent(ctx context.Context, id uint, content, contentHTML string) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok {
		return nil, constant.ErrNotFound
	}
	c.Content = content
	c.ContentHTML = contentHTML
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) CountByStatus(ctx context.Context, postID *uint) (*model.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := &model.StatusCounts{}
	for _, c := range r.store {
		if postID != nil && c.PostID != *postID {
			continue
		}
		switch c.Status {
		case model.StatusPending:
			counts.Pending++
		case model.StatusApproved:
			counts.Approved++
		case model.StatusRejected:
			counts.Rejected++
		case model.StatusSpam:
			counts.Spam++
		case model.StatusTrash:
			counts.Trash++
		}
		counts.Total++
	}
	return counts, nil
}

func (r *fakeCommentRepo) CountApprovedByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return map[uint]int64{}, nil
}

type fakePostRepo struct{}

func (r *fakePostRepo) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	return &model.Post{ID: id, CommentsOpen: true}, nil
}
func (r *fakePostRepo) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return nil, constant.ErrNotFound
}
func (r *fakePostRepo) SetCommentsOpen(ctx context.Context, id uint, open bool) error { return nil }

type fakeUserRepo struct {
	store map[uint]*model.User
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	u, ok := r.store[id]
	if !ok {
		return nil, constant.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, constant.ErrNotFound
}

type fakeTxManager struct {
	repos repository.Repositories
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return fn(m.repos)
}

type fakeSettings struct {
	values map[string]string
}

func (s *fakeSettings) LoadAllSettings(ctx context.Context) error { return nil }
func (s *fakeSettings) Get(key string) string                     { return s.values[key] }
func (s *fakeSettings) GetBool(key string) bool                   { return s.values[key] == "true" }
func (s *fakeSettings) GetInt(key string, fallback int) int {
	n, err := strconv.Atoi(s.values[key])
	if err != nil {
		return fallback
	}
	return n
}
func (s *fakeSettings) UpdateSettings(ctx context.Context, settingsToUpdate map[string]string) error {
	for k, v := range settingsToUpdate {
		s.values[k] = v
	}
	return nil
}

// --- 测试装配 ---

type testEnv struct {
	svc      *Service
	repo     *fakeCommentRepo
	users    *fakeUserRepo
	settings *fakeSettings
	cache    utility.CacheService
}

func newTestEnv(t *testing.T, settings map[string]string) *testEnv {
	t.Helper()
	if settings == nil {
		settings = map[string]string{
			constant.KeyCommentApproveOnReply.String():   "true",
			constant.KeyCommentLimitPerWindow.String():   "100",
			constant.KeyCommentStaffReplyStatus.String(): "approved",
		}
	}

	repo := newFakeCommentRepo()
	posts := &fakePostRepo{}
	users := &fakeUserRepo{store: map[uint]*model.User{
		1: {ID: 1, Nickname: "站长", Email: "admin@example.com", UserGroupID: model.UserGroupAdmin},
		2: {ID: 2, Nickname: "普通用户", Email: "user@example.com", UserGroupID: model.UserGroupUser},
	}}
	tx := &fakeTxManager{repos: repository.Repositories{Comment: repo, Post: posts, User: users}}
	settingSvc := &fakeSettings{values: settings}

	cache := utility.NewMemoryCacheService()
	t.Cleanup(func() {
		if stopper, ok := cache.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	})

	bus := event.NewEventBus()
	t.Cleanup(bus.Shutdown)

	cSvc := commentsvc.NewService(repo, posts, users, tx, settingSvc, cache, bus)
	svc := NewService(repo, users, settingSvc, cache, bus, cSvc)
	return &testEnv{svc: svc, repo: repo, users: users, settings: settingSvc, cache: cache}
}

func commentPublicID(t *testing.T, dbID uint) string {
	t.Helper()
	id, err := idgen.GeneratePublicID(dbID, idgen.EntityTypeComment)
	if err != nil {
		t.Fatalf("生成评论公共ID失败: %v", err)
	}
	return id
}

func adminClaims(t *testing.T) *auth.CustomClaims {
	t.Helper()
	publicID, err := idgen.GeneratePublicID(1, idgen.EntityTypeUser)
	if err != nil {
		t.Fatalf("生成用户公共ID失败: %v", err)
	}
	return &auth.CustomClaims{UserID: publicID, UserGroupID: model.UserGroupAdmin}
}

func normalUserClaims(t *testing.T) *auth.CustomClaims {
	t.Helper()
	publicID, err := idgen.GeneratePublicID(2, idgen.EntityTypeUser)
	if err != nil {
		t.Fatalf("生成用户公共ID失败: %v", err)
	}
	return &auth.CustomClaims{UserID: publicID, UserGroupID: model.UserGroupUser}
}

// --- 测试用例 ---

func TestTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("待审核的评论可以通过", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusPending)

		result, err := env.svc.Transition(ctx, commentPublicID(t, c.ID), "approved")
		if err != nil {
			t.Fatalf("Transition 失败: %v", err)
		}
		if result.Status != "approved" {
			t.Errorf("返回状态 = %s，期望 approved", result.Status)
		}
		stored, _ := env.repo.FindByID(ctx, c.ID)
		if stored.Status != model.StatusApproved {
			t.Errorf("落库状态 = %s，期望 approved", stored.Status)
		}
	})

	t.Run("流转到当前状态是幂等操作", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusApproved)

		result, err := env.svc.Transition(ctx, commentPublicID(t, c.ID), "approved")
		if err != nil {
			t.Fatalf("幂等流转不应报错: %v", err)
		}
		if result.Status != "approved" {
			t.Errorf("返回状态 = %s，期望 approved", result.Status)
		}
	})

	t.Run("非法流转被拒绝", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusApproved)

		_, err := env.svc.Transition(ctx, commentPublicID(t, c.ID), "pending")
		if !errors.Is(err, constant.ErrInvalidTransition) {
			t.Errorf("err = %v，期望 ErrInvalidTransition", err)
		}
		stored, _ := env.repo.FindByID(ctx, c.ID)
		if stored.Status != model.StatusApproved {
			t.Errorf("非法流转不应修改状态，当前 = %s", stored.Status)
		}
	})

	t.Run("回收站是终态", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusTrash)

		_, err := env.svc.Transition(ctx, commentPublicID(t, c.ID), "pending")
		if !errors.Is(err, constant.ErrInvalidTransition) {
			t.Errorf("err = %v，期望 ErrInvalidTransition", err)
		}
	})

	t.Run("评论不存在", func(t *testing.T) {
		env := newTestEnv(t, nil)
		_, err := env.svc.Transition(ctx, commentPublicID(t, 9999), "approved")
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("err = %v，期望 ErrNotFound", err)
		}
	})

	t.Run("非法目标状态", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusPending)
		_, err := env.svc.Transition(ctx, commentPublicID(t, c.ID), "deleted")
		if !errors.Is(err, constant.ErrBadRequest) {
			t.Errorf("err = %v，期望 ErrBadRequest", err)
		}
	})

	t.Run("错误实体类型的ID被拒绝", func(t *testing.T) {
		env := newTestEnv(t, nil)
		postID, _ := idgen.GeneratePublicID(1, idgen.EntityTypePost)
		_, err := env.svc.Transition(ctx, postID, "approved")
		if !errors.Is(err, constant.ErrInvalidPublicID) {
			t.Errorf("err = %v，期望 ErrInvalidPublicID", err)
		}
	})

	t.Run("并发修改返回冲突", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusPending)
		env.repo.failNextCAS = true

		_, err := env.svc.Transition(ctx, commentPublicID(t, c.ID), "approved")
		if !errors.Is(err, constant.ErrConflict) {
			t.Errorf("err = %v，期望 ErrConflict", err)
		}
	})
}

func TestBulkTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("部分失败逐条汇报", func(t *testing.T) {
		env := newTestEnv(t, nil)
		pending := env.repo.add(1, nil, model.StatusPending)
		approved := env.repo.add(1, nil, model.StatusApproved)

		pendingID := commentPublicID(t, pending.ID)
		approvedID := commentPublicID(t, approved.ID)
		missingID := commentPublicID(t, 9999)

		result, err := env.svc.BulkTransition(ctx, []string{pendingID, approvedID, missingID}, "rejected")
		if err != nil {
			t.Fatalf("BulkTransition 失败: %v", err)
		}
		if len(result.Succeeded) != 1 || result.Succeeded[0] != pendingID {
			t.Errorf("成功列表 = %v，期望只有 %s", result.Succeeded, pendingID)
		}
		if len(result.Failed) != 2 {
			t.Errorf("失败条目 %d 条，期望 2 条: %v", len(result.Failed), result.Failed)
		}
		if _, ok := result.Failed[approvedID]; !ok {
			t.Error("已通过的评论流转到驳回应被汇报为失败")
		}
		if _, ok := result.Failed[missingID]; !ok {
			t.Error("不存在的评论应被汇报为失败")
		}
	})

	t.Run("重复的ID只处理一次", func(t *testing.T) {
		env := newTestEnv(t, nil)
		pending := env.repo.add(1, nil, model.StatusPending)
		pendingID := commentPublicID(t, pending.ID)

		result, err := env.svc.BulkTransition(ctx, []string{pendingID, pendingID, pendingID}, "approved")
		if err != nil {
			t.Fatalf("BulkTransition 失败: %v", err)
		}
		if len(result.Succeeded) != 1 {
			t.Errorf("成功列表 = %v，重复ID应只处理一次", result.Succeeded)
		}
	})

	t.Run("非法目标状态整体失败", func(t *testing.T) {
		env := newTestEnv(t, nil)
		if _, err := env.svc.BulkTransition(ctx, []string{"abc"}, "unknown"); !errors.Is(err, constant.ErrBadRequest) {
			t.Errorf("err = %v，期望 ErrBadRequest", err)
		}
	})
}

func TestBulkDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	root := env.repo.add(1, nil, model.StatusApproved)
	env.repo.add(1, &root.ID, model.StatusApproved)
	lone := env.repo.add(1, nil, model.StatusSpam)

	rootID := commentPublicID(t, root.ID)
	loneID := commentPublicID(t, lone.ID)

	result, err := env.svc.BulkDelete(ctx, []string{rootID, loneID, "bad###"})
	if err != nil {
		t.Fatalf("BulkDelete 失败: %v", err)
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("成功列表 = %v，期望 2 条", result.Succeeded)
	}
	if _, ok := result.Failed["bad###"]; !ok {
		t.Error("非法ID应被汇报为失败")
	}
	if len(env.repo.store) != 0 {
		t.Errorf("删除后仍残留 %d 条评论（根评论应级联删除其回复）", len(env.repo.store))
	}
}

func TestStaffReply(t *testing.T) {
	ctx := context.Background()

	t.Run("未登录被拒绝", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusPending)
		if _, err := env.svc.StaffReply(ctx, commentPublicID(t, c.ID), "收到", nil); !errors.Is(err, constant.ErrUnauthorized) {
			t.Errorf("err = %v，期望 ErrUnauthorized", err)
		}
	})

	t.Run("非管理员被拒绝", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusPending)
		if _, err := env.svc.StaffReply(ctx, commentPublicID(t, c.ID), "收到", normalUserClaims(t)); !errors.Is(err, constant.ErrForbidden) {
			t.Errorf("err = %v，期望 ErrForbidden", err)
		}
	})

	t.Run("回复挂在根评论下并顺带通过目标", func(t *testing.T) {
		env := newTestEnv(t, nil)
		root := env.repo.add(1, nil, model.StatusApproved)
		child := env.repo.add(1, &root.ID, model.StatusPending)

		reply, err := env.svc.StaffReply(ctx, commentPublicID(t, child.ID), "感谢反馈", adminClaims(t))
		if err != nil {
			t.Fatalf("StaffReply 失败: %v", err)
		}
		if !reply.IsStaff {
			t.Error("站长回复应标记为站长评论")
		}
		if reply.ParentID == nil || *reply.ParentID != commentPublicID(t, root.ID) {
			t.Errorf("回复的父评论 = %v，期望挂在根评论下", reply.ParentID)
		}
		if reply.Status == nil || *reply.Status != string(model.StatusApproved) {
			t.Errorf("站长回复状态 = %v，期望 approved", reply.Status)
		}

		target, _ := env.repo.FindByID(ctx, child.ID)
		if target.Status != model.StatusApproved {
			t.Errorf("站长回复后目标评论状态 = %s，期望被顺带通过", target.Status)
		}
	})

	t.Run("关闭顺带通过时目标保持待审", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			constant.KeyCommentApproveOnReply.String(): "false",
		})
		c := env.repo.add(1, nil, model.StatusPending)

		if _, err := env.svc.StaffReply(ctx, commentPublicID(t, c.ID), "已记录", adminClaims(t)); err != nil {
			t.Fatalf("StaffReply 失败: %v", err)
		}
		target, _ := env.repo.FindByID(ctx, c.ID)
		if target.Status != model.StatusPending {
			t.Errorf("目标评论状态 = %s，期望保持 pending", target.Status)
		}
	})

	t.Run("回复初始状态可配置", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			constant.KeyCommentStaffReplyStatus.String(): "pending",
		})
		c := env.repo.add(1, nil, model.StatusApproved)

		reply, err := env.svc.StaffReply(ctx, commentPublicID(t, c.ID), "待定回复", adminClaims(t))
		if err != nil {
			t.Fatalf("StaffReply 失败: %v", err)
		}
		if reply.Status == nil || *reply.Status != string(model.StatusPending) {
			t.Errorf("回复状态 = %v，期望按配置为 pending", reply.Status)
		}
	})

	t.Run("不能回复垃圾评论", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusSpam)
		if _, err := env.svc.StaffReply(ctx, commentPublicID(t, c.ID), "你好", adminClaims(t)); !errors.Is(err, constant.ErrInvalidTransition) {
			t.Errorf("err = %v，期望 ErrInvalidTransition", err)
		}
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()

	t.Run("统计各状态数量", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.repo.add(1, nil, model.StatusPending)
		env.repo.add(1, nil, model.StatusPending)
		env.repo.add(1, nil, model.StatusApproved)
		env.repo.add(1, nil, model.StatusSpam)

		counts, err := env.svc.Stats(ctx, "")
		if err != nil {
			t.Fatalf("Stats 失败: %v", err)
		}
		if counts.Pending != 2 || counts.Approved != 1 || counts.Spam != 1 || counts.Total != 4 {
			t.Errorf("统计结果 = %+v，期望 pending=2 approved=1 spam=1 total=4", counts)
		}
	})

	t.Run("按文章过滤统计", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.repo.add(1, nil, model.StatusPending)
		env.repo.add(1, nil, model.StatusApproved)
		env.repo.add(2, nil, model.StatusApproved)

		postID, err := idgen.GeneratePublicID(1, idgen.EntityTypePost)
		if err != nil {
			t.Fatalf("生成文章公共ID失败: %v", err)
		}
		counts, err := env.svc.Stats(ctx, postID)
		if err != nil {
			t.Fatalf("Stats 失败: %v", err)
		}
		if counts.Pending != 1 || counts.Approved != 1 || counts.Total != 2 {
			t.Errorf("文章统计 = %+v，期望 pending=1 approved=1 total=2", counts)
		}
	})

	t.Run("按文章统计不走全站缓存", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.repo.add(1, nil, model.StatusPending)

		// 先读一次全站统计填充缓存
		if _, err := env.svc.Stats(ctx, ""); err != nil {
			t.Fatalf("Stats 失败: %v", err)
		}
		env.repo.add(1, nil, model.StatusPending)

		postID, err := idgen.GeneratePublicID(1, idgen.EntityTypePost)
		if err != nil {
			t.Fatalf("生成文章公共ID失败: %v", err)
		}
		counts, err := env.svc.Stats(ctx, postID)
		if err != nil {
			t.Fatalf("Stats 失败: %v", err)
		}
		if counts.Pending != 2 {
			t.Errorf("文章统计 pending = %d，期望读到数据表里的 2 条", counts.Pending)
		}
	})

	t.Run("文章ID类型不符返回错误", func(t *testing.T) {
		env := newTestEnv(t, nil)
		wrongID, err := idgen.GeneratePublicID(1, idgen.EntityTypeComment)
		if err != nil {
			t.Fatalf("生成公共ID失败: %v", err)
		}
		if _, err := env.svc.Stats(ctx, wrongID); !errors.Is(err, constant.ErrInvalidPublicID) {
			t.Errorf("err = %v，期望 ErrInvalidPublicID", err)
		}
	})

	t.Run("第二次读取命中缓存", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.repo.add(1, nil, model.StatusPending)

		first, err := env.svc.Stats(ctx, "")
		if err != nil {
			t.Fatalf("Stats 失败: %v", err)
		}

		// 绕过服务直接改库，缓存未失效时读到的仍是旧值
		env.repo.add(1, nil, model.StatusPending)

		second, err := env.svc.Stats(ctx, "")
		if err != nil {
			t.Fatalf("Stats 失败: %v", err)
		}
		if *second != *first {
			t.Errorf("缓存未失效时两次统计应一致: 第一次 %+v, 第二次 %+v", first, second)
		}
	})

	t.Run("状态流转后缓存失效", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := env.repo.add(1, nil, model.StatusPending)

		before, _ := env.svc.Stats(ctx, "")
		if before.Pending != 1 || before.Approved != 0 {
			t.Fatalf("初始统计 = %+v", before)
		}

		if _, err := env.svc.Transition(ctx, commentPublicID(t, c.ID), "approved"); err != nil {
			t.Fatalf("Transition 失败: %v", err)
		}

		after, err := env.svc.Stats(ctx, "")
		if err != nil {
			t.Fatalf("Stats 失败: %v", err)
		}
		if after.Pending != 0 || after.Approved != 1 {
			t.Errorf("流转后统计 = %+v，期望 pending=0 approved=1", after)
		}
	})

	t.Run("RefreshStats修正缓存偏差", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.repo.add(1, nil, model.StatusApproved)

		// 塞入一个与数据表不一致的缓存值
		env.cache.Set(ctx, "moderation:stats", `{"pending":99,"total":99}`, 0)

		if err := env.svc.RefreshStats(ctx); err != nil {
			t.Fatalf("RefreshStats 失败: %v", err)
		}

		counts, err := env.svc.Stats(ctx, "")
		if err != nil {
			t.Fatalf("Stats 失败: %v", err)
		}
		if counts.Pending != 0 || counts.Approved != 1 || counts.Total != 1 {
			t.Errorf("修正后统计 = %+v，期望 approved=1 total=1", counts)
		}
	})
}
