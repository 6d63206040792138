// Package memory 提供进程内的 Repository 实现，用于本地演示与测试
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"bookhatch-api/internal/domain/entity"
	"bookhatch-api/internal/domain/repository"
)

// Store 内存文档存储
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	users    map[string]*entity.User
	stories  map[string]*entity.Story
	chapters map[string]*entity.Chapter
	jobs     map[string]*entity.GenerationJob
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*entity.User),
		stories:  make(map[string]*entity.Story),
		chapters: make(map[string]*entity.Chapter),
		jobs:     make(map[string]*entity.GenerationJob),
	}
}

// Stories 返回故事仓储
func (s *Store) Stories() *StoryRepository { return &StoryRepository{s: s} }

// Chapters 返回章节仓储
func (s *Store) Chapters() *ChapterRepository { return &ChapterRepository{s: s} }

// Users 返回用户仓储
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Jobs 返回任务仓储
func (s *Store) Jobs() *JobRepository { return &JobRepository{s: s} }

// undoLog 记录事务内被改写的键及其原值
type undoLog struct {
	steps []func()
}

// WithTransaction 串行执行事务，失败时只回滚事务内改写过的键
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(repository.TxKey{}).(*undoLog); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{}
	if err := fn(context.WithValue(ctx, repository.TxKey{}, log)); err != nil {
		s.mu.Lock()
		for i := len(log.steps) - 1; i >= 0; i-- {
			log.steps[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// remember 在事务中记录 m[id] 的原值，调用方须持有写锁
func remember[T any](ctx context.Context, m map[string]T, id string) {
	log, ok := ctx.Value(repository.TxKey{}).(*undoLog)
	if !ok {
		return
	}
	prev, existed := m[id]
	log.steps = append(log.steps, func() {
		if existed {
			m[id] = prev
		} else {
			delete(m, id)
		}
	})
}

func cloneStory(st *entity.Story) *entity.Story {
	cp := *st
	cp.Keywords = slices.Clone(st.Keywords)
	return &cp
}

func cloneChapter(ch *entity.Chapter) *entity.Chapter {
	cp := *ch
	return &cp
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	cp.PreferredGenres = slices.Clone(u.PreferredGenres)
	return &cp
}

func cloneJob(j *entity.GenerationJob) *entity.GenerationJob {
	cp := *j
	cp.InputParams = slices.Clone(j.InputParams)
	cp.OutputResult = slices.Clone(j.OutputResult)
	return &cp
}

// StoryRepository 故事仓储
type StoryRepository struct{ s *Store }

// Create 创建故事
func (r *StoryRepository) Create(ctx context.Context, story *entity.Story) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.stories {
		if existing.Slug == story.Slug {
			return errDuplicate("slug", story.Slug)
		}
	}
	now := time.Now()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	story.UpdatedAt = now
	remember(ctx, r.s.stories, story.ID)
	r.s.stories[story.ID] = cloneStory(story)
	return nil
}

// GetByID 根据 ID 获取故事
func (r *StoryRepository) GetByID(_ context.Context, id string) (*entity.Story, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if st, ok := r.s.stories[id]; ok {
		return cloneStory(st), nil
	}
	return nil, nil
}

// GetBySlug 根据 slug 获取故事
func (r *StoryRepository) GetBySlug(_ context.Context, slug string) (*entity.Story, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, st := range r.s.stories {
		if st.Slug == slug {
			return cloneStory(st), nil
		}
	}
	return nil, nil
}

// Update 更新故事
func (r *StoryRepository) Update(ctx context.Context, story *entity.Story) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.stories {
		if id != story.ID && existing.Slug == story.Slug {
			return errDuplicate("slug", story.Slug)
		}
	}
	story.UpdatedAt = time.Now()
	remember(ctx, r.s.stories, story.ID)
	r.s.stories[story.ID] = cloneStory(story)
	return nil
}

// Delete 删除故事
func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	remember(ctx, r.s.stories, id)
	delete(r.s.stories, id)
	return nil
}

// SlugExists 检查 slug 是否被其他故事占用
func (r *StoryRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, st := range r.s.stories {
		if st.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// Search 检索书目
func (r *StoryRepository) Search(_ context.Context, search *repository.StorySearch, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	r.s.mu.RLock()
	var matched []*entity.Story
	for _, st := range r.s.stories {
		if search.Matches(st) {
			matched = append(matched, cloneStory(st))
		}
	}
	r.s.mu.RUnlock()

	sortByTitle(matched)
	return repository.Paginate(matched, pagination), nil
}

// ListByAuthor 获取作者的全部故事
func (r *StoryRepository) ListByAuthor(_ context.Context, authorID string) ([]*entity.Story, error) {
	r.s.mu.RLock()
	var out []*entity.Story
	for _, st := range r.s.stories {
		if st.AuthorID == authorID {
			out = append(out, cloneStory(st))
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// ListByAuthorName 按作者名获取故事
func (r *StoryRepository) ListByAuthorName(_ context.Context, authorName string, statuses []entity.StoryStatus) ([]*entity.Story, error) {
	search := &repository.StorySearch{Statuses: statuses}

	r.s.mu.RLock()
	var out []*entity.Story
	for _, st := range r.s.stories {
		if st.AuthorName == authorName && search.Matches(st) {
			out = append(out, cloneStory(st))
		}
	}
	r.s.mu.RUnlock()

	sortByTitle(out)
	return out, nil
}

// sortByTitle 按小写标题的字节序排序，同名按 ID，与 SQL 实现一致
func sortByTitle(stories []*entity.Story) {
	sort.Slice(stories, func(i, j int) bool {
		a, b := strings.ToLower(stories[i].Title), strings.ToLower(stories[j].Title)
		if a != b {
			return a < b
		}
		return stories[i].ID < stories[j].ID
	})
}

// ChapterRepository 章节仓储
type ChapterRepository struct{ s *Store }

// Create 创建章节
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.chapters[chapter.ID]; ok {
		return errDuplicate("chapter id", chapter.ID)
	}
	now := time.Now()
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = now
	}
	chapter.UpdatedAt = now
	remember(ctx, r.s.chapters, chapter.ID)
	r.s.chapters[chapter.ID] = cloneChapter(chapter)
	return nil
}

// GetByID 根据 ID 获取章节
func (r *ChapterRepository) GetByID(_ context.Context, id string) (*entity.Chapter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if ch, ok := r.s.chapters[id]; ok {
		return cloneChapter(ch), nil
	}
	return nil, nil
}

// Update 更新章节
func (r *ChapterRepository) Update(ctx context.Context, chapter *entity.Chapter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	chapter.UpdatedAt = time.Now()
	remember(ctx, r.s.chapters, chapter.ID)
	r.s.chapters[chapter.ID] = cloneChapter(chapter)
	return nil
}

// Delete 删除章节
func (r *ChapterRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	remember(ctx, r.s.chapters, id)
	delete(r.s.chapters, id)
	return nil
}

// ListByStory 获取故事全部章节
func (r *ChapterRepository) ListByStory(_ context.Context, storyID string) ([]*entity.Chapter, error) {
	return r.list(func(ch *entity.Chapter) bool { return ch.StoryID == storyID }), nil
}

// ListPublishedByStory 获取故事已发布章节
func (r *ChapterRepository) ListPublishedByStory(_ context.Context, storyID string) ([]*entity.Chapter, error) {
	return r.list(func(ch *entity.Chapter) bool { return ch.StoryID == storyID && ch.IsPublished }), nil
}

func (r *ChapterRepository) list(keep func(*entity.Chapter) bool) []*entity.Chapter {
	r.s.mu.RLock()
	var out []*entity.Chapter
	for _, ch := range r.s.chapters {
		if keep(ch) {
			out = append(out, cloneChapter(ch))
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// UpdateOrders 批量写回章节顺序
func (r *ChapterRepository) UpdateOrders(ctx context.Context, chapters []*entity.Chapter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ch := range chapters {
		if stored, ok := r.s.chapters[ch.ID]; ok {
			remember(ctx, r.s.chapters, ch.ID)
			cp := cloneChapter(stored)
			cp.Order = ch.Order
			r.s.chapters[ch.ID] = cp
		}
	}
	return nil
}

// SetPublishedByStory 批量设置发布状态
func (r *ChapterRepository) SetPublishedByStory(ctx context.Context, storyID string, published bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, ch := range r.s.chapters {
		if ch.StoryID == storyID {
			remember(ctx, r.s.chapters, id)
			cp := cloneChapter(ch)
			cp.IsPublished = published
			r.s.chapters[id] = cp
		}
	}
	return nil
}

// DeleteByStory 删除故事全部章节
func (r *ChapterRepository) DeleteByStory(ctx context.Context, storyID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, ch := range r.s.chapters {
		if ch.StoryID == storyID {
			remember(ctx, r.s.chapters, id)
			delete(r.s.chapters, id)
		}
	}
	return nil
}

// UserRepository 用户仓储
type UserRepository struct{ s *Store }

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return errDuplicate("email", user.Email)
		}
	}
	remember(ctx, r.s.users, user.ID)
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

// GetByID 根据 ID 获取用户
func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

// GetByEmail 根据邮箱获取用户
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// Update 更新用户
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.UpdatedAt = time.Now()
	remember(ctx, r.s.users, user.ID)
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

// UpdateLastLogin 更新最后登录时间
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		remember(ctx, r.s.users, id)
		cp := cloneUser(u)
		now := time.Now()
		cp.LastLoginAt = &now
		r.s.users[id] = cp
	}
	return nil
}

// ExistsByEmail 检查邮箱是否存在
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

// JobRepository 任务仓储
type JobRepository struct{ s *Store }

// Create 创建任务
func (r *JobRepository) Create(ctx context.Context, job *entity.GenerationJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	remember(ctx, r.s.jobs, job.ID)
	r.s.jobs[job.ID] = cloneJob(job)
	return nil
}

// GetByID 根据 ID 获取任务
func (r *JobRepository) GetByID(_ context.Context, id string) (*entity.GenerationJob, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if j, ok := r.s.jobs[id]; ok {
		return cloneJob(j), nil
	}
	return nil, nil
}

// Update 更新任务
func (r *JobRepository) Update(ctx context.Context, job *entity.GenerationJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job.UpdatedAt = time.Now()
	remember(ctx, r.s.jobs, job.ID)
	r.s.jobs[job.ID] = cloneJob(job)
	return nil
}

// ListByUser 获取用户任务列表
func (r *JobRepository) ListByUser(_ context.Context, userID string, filter *repository.JobFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	r.s.mu.RLock()
	var out []*entity.GenerationJob
	for _, j := range r.s.jobs {
		if j.UserID != userID {
			continue
		}
		if filter != nil {
			if filter.JobType != "" && j.JobType != filter.JobType {
				continue
			}
			if filter.Status != "" && j.Status != filter.Status {
				continue
			}
			if filter.ChapterID != "" && j.ChapterID != filter.ChapterID {
				continue
			}
		}
		out = append(out, cloneJob(j))
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return repository.Paginate(out, pagination), nil
}

type duplicateError struct {
	field, value string
}

func (e *duplicateError) Error() string {
	return "duplicate " + e.field + ": " + strings.TrimSpace(e.value)
}

func (e *duplicateError) Unwrap() error {
	return repository.ErrDuplicateKey
}

func errDuplicate(field, value string) error {
	return &duplicateError{field: field, value: value}
}
